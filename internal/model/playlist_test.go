package model

import "testing"

func newTestPlaylist() *Playlist {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL123")
	p.AddVideo(&PlaylistVideo{ID: "a", Title: "First", Status: VideoStatusPending})
	p.AddVideo(&PlaylistVideo{ID: "b", Title: "Second", Status: VideoStatusPending})
	p.AddVideo(&PlaylistVideo{ID: "c", Title: "Third", Status: VideoStatusPending})
	return p
}

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL123")

	if p.Status != PlaylistStatusParsing {
		t.Errorf("Expected status parsing, got %s", p.Status)
	}
	if len(p.Videos) != 0 || p.TotalVideos != 0 {
		t.Errorf("Expected empty playlist, got %d videos", len(p.Videos))
	}
	if p.IsReadyForDownload() {
		t.Error("Parsing playlist should not be ready for download")
	}
}

func TestPlaylist_AddVideo(t *testing.T) {
	p := newTestPlaylist()

	if p.TotalVideos != 3 {
		t.Errorf("Expected 3 videos, got %d", p.TotalVideos)
	}

	p.UpdateStatus(PlaylistStatusReady)
	if !p.IsReadyForDownload() {
		t.Error("Expected playlist with videos to be ready for download")
	}
}

func TestPlaylist_Progress(t *testing.T) {
	p := newTestPlaylist()

	if p.GetDownloadProgress() != 0 {
		t.Errorf("Expected 0%% progress, got %v", p.GetDownloadProgress())
	}

	p.UpdateVideoStatus("a", VideoStatusCompleted)
	p.UpdateVideoOutputPath("a", "/music/First.mp3", 1024)
	p.MarkVideoFailed("b", "network down")

	completed := p.GetCompletedVideos()
	if len(completed) != 1 || completed[0].ID != "a" {
		t.Fatalf("Expected only video 'a' completed, got %v", completed)
	}
	if completed[0].OutputPath != "/music/First.mp3" || completed[0].FileSize != 1024 {
		t.Errorf("Unexpected output for 'a': %s (%d)", completed[0].OutputPath, completed[0].FileSize)
	}

	progress := p.GetDownloadProgress()
	if progress < 33.3 || progress > 33.4 {
		t.Errorf("Expected ~33.3%% progress, got %v", progress)
	}

	if !p.HasErrors() {
		t.Error("Expected playlist to report errors")
	}
	if p.Videos[1].Error != "network down" {
		t.Errorf("Expected error message on 'b', got %q", p.Videos[1].Error)
	}
}

func TestPlaylist_UnknownVideoIgnored(t *testing.T) {
	p := newTestPlaylist()

	p.UpdateVideoStatus("missing", VideoStatusCompleted)
	p.MarkVideoFailed("missing", "boom")

	if p.HasErrors() || len(p.GetCompletedVideos()) != 0 {
		t.Error("Updates for unknown IDs should not change the playlist")
	}
}
