package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Curation.MinPopularity != 30 {
			t.Errorf("expected min popularity 30, got %d", config.Curation.MinPopularity)
		}
		if config.Curation.MaxPopularity != 80 {
			t.Errorf("expected max popularity 80, got %d", config.Curation.MaxPopularity)
		}
		if config.Curation.AlbumLimit != 15 {
			t.Errorf("expected album limit 15, got %d", config.Curation.AlbumLimit)
		}
		if config.Curation.MinTracks != 20 || config.Curation.MaxTracks != 30 {
			t.Errorf("expected track target range [20,30], got [%d,%d]", config.Curation.MinTracks, config.Curation.MaxTracks)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected default port 8080, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("valid file", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			content := `
[credentials.spotify]
client_id = "abc"
client_secret = "xyz"
redirect_uri = "http://localhost:9999/callback"

[curation]
min_popularity = 10
max_popularity = 90
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Credentials.Spotify.ClientID != "abc" {
				t.Errorf("expected client id 'abc', got %s", config.Credentials.Spotify.ClientID)
			}
			if config.Curation.MaxPopularity != 90 {
				t.Errorf("expected max popularity 90, got %d", config.Curation.MaxPopularity)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
			if err == nil {
				t.Error("expected error for missing file")
			}
		})

		t.Run("malformed file", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "bad.toml")
			if err := os.WriteFile(path, []byte("[[[not toml"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			_, err := LoadConfig(path)
			if err == nil {
				t.Error("expected error for malformed file")
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Fatal("expected config file to exist")
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
