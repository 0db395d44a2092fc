// package formatter renders a curated playlist to local formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// ExportToCSV converts a curated playlist to CSV with columns: Position, Title, Artists, Album, Popularity, URI
func ExportToCSV(playlist *models.CuratedPlaylist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artists", "Album", "Popularity", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range playlist.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.Title,
			track.ArtistLine(),
			track.Album,
			strconv.Itoa(track.Popularity),
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a curated playlist to Markdown with an optional cover image
func ExportToMarkdown(playlist *models.CuratedPlaylist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# deepcuts %s\n\n", playlist.CreatedAt.Format("2006-01-02")))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d of %d drawn\n\n", len(playlist.Tracks), playlist.Target))

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [popularity %d]\n", i+1, track.ArtistLine(), track.Title, albumPart, track.Popularity))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a curated playlist to plain text
func ExportToText(playlist *models.CuratedPlaylist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: deepcuts %s\n", playlist.CreatedAt.Format("2006-01-02")))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.ArtistLine(), track.Title))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToJSON generates an indented JSON representation of the playlist
func ToJSON(playlist *models.CuratedPlaylist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// WriteCSVExport writes a playlist to {base}_tracks.csv and {base}_playlist.json.
//
// Defaults to the curation date as the base filename.
func WriteCSVExport(playlist *models.CuratedPlaylist, baseFilepath string) ([]string, error) {
	if baseFilepath == "" {
		baseFilepath = "deepcuts_" + playlist.CreatedAt.Format("2006-01-02")
	}

	csvData, err := ExportToCSV(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	jsonData, err := ToJSON(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	jsonFile := baseFilepath + "_playlist.json"
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write JSON file: %w", err)
	}

	return []string{tracksFile, jsonFile}, nil
}

// WriteMarkdownExport writes a playlist to {dir}/README.md with an optional
// downloaded cover image at {dir}/cover.jpg.
//
// The directory defaults to the curation date. The imageURL parameter is
// optional; a failed download degrades to a Markdown file without a cover.
func WriteMarkdownExport(playlist *models.CuratedPlaylist, outputDir string, imageURL string) ([]string, error) {
	if outputDir == "" {
		outputDir = "deepcuts_" + playlist.CreatedAt.Format("2006-01-02")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var files []string

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				files = append(files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(playlist, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return append(files, mdFile), nil
}

// WriteTextExport writes a playlist to a plain text file.
//
// Defaults to deepcuts_{date}_tracks.txt as the filename.
func WriteTextExport(playlist *models.CuratedPlaylist, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("deepcuts_%s_tracks.txt", playlist.CreatedAt.Format("2006-01-02"))
	}

	textData, err := ExportToText(playlist)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
