package player

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazadus/hitback-cards/internal/catalog"
)

func testTrack() *catalog.Track {
	return &catalog.Track{
		ID:        "001",
		Artist:    "Journey",
		Title:     "Don't Stop Believin'",
		AudioFile: "001.mp3",
	}
}

func TestPlayNonExistentFile(t *testing.T) {
	player := NewPlayer()
	defer player.Close()

	err := player.Play(testTrack(), "/non/existent/file.mp3", DefaultPreview)
	if err == nil {
		t.Error("Ожидалась ошибка для несуществующего файла")
	}
	if player.IsPlaying() {
		t.Error("Плеер не должен воспроизводить при ошибке загрузки")
	}
	if player.CurrentTrack() != nil {
		t.Error("Текущий трек не должен устанавливаться при ошибке")
	}
}

func TestPlayInvalidMP3(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "broken.mp3")
	if err := os.WriteFile(filePath, []byte("not an mp3"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	player := NewPlayer()
	defer player.Close()

	if err := player.Play(testTrack(), filePath, 0); err == nil {
		t.Error("Ожидалась ошибка декодирования MP3")
	}
}

func TestPlayHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	player := NewPlayer()
	defer player.Close()

	if err := player.Play(testTrack(), server.URL+"/001.mp3", DefaultPreview); err == nil {
		t.Error("Ожидалась ошибка для статуса 404")
	}
}

func TestPlayStreamedGarbage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "garbage")
	}))
	defer server.Close()

	player := NewPlayer()
	defer player.Close()

	if err := player.Play(testTrack(), server.URL+"/001.mp3", DefaultPreview); err == nil {
		t.Error("Ожидалась ошибка декодирования потока")
	}
}

func TestPlayEmptySource(t *testing.T) {
	player := NewPlayer()
	defer player.Close()

	if err := player.Play(testTrack(), "", 0); err == nil {
		t.Error("Ожидалась ошибка для пустого источника")
	}
}

func TestPauseStopWithoutPlayback(t *testing.T) {
	player := NewPlayer()
	defer player.Close()

	// Пауза и остановка без активного воспроизведения ничего не ломают
	player.Pause()
	if player.IsPlaying() {
		t.Error("Плеер не должен воспроизводить после паузы")
	}
	player.Stop()
	if player.IsPlaying() || player.CurrentTrack() != nil {
		t.Error("Плеер должен быть остановлен")
	}
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		audioDir string
		expected string
		wantErr  bool
	}{
		{"локальный каталог", "001.mp3", "/music", "/music/001.mp3", false},
		{"абсолютный путь", "/tmp/a.mp3", "/music", "/tmp/a.mp3", false},
		{"абсолютный URL", "https://cdn.example.com/a.mp3", "/music", "https://cdn.example.com/a.mp3", false},
		{"каталог URL", "Journey - Song.mp3", "https://cdn.example.com/audio/", "https://cdn.example.com/audio/Journey%20-%20Song.mp3", false},
		{"без файла", "", "/music", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			track := catalog.Track{ID: "001", AudioFile: test.file}
			source, err := ResolveSource(track, test.audioDir)
			if (err != nil) != test.wantErr {
				t.Fatalf("Ошибка = %v, ожидалась ошибка: %v", err, test.wantErr)
			}
			if source != test.expected {
				t.Errorf("Ожидался источник %s, получено: %s", test.expected, source)
			}
		})
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		stuck    int
		expected string
	}{
		{0, "Воспроизведение"},
		{2, "Буферизация..."},
		{5, "Медленная загрузка"},
		{9, "Возможная проблема с соединением"},
	}

	for _, test := range tests {
		if result := StatusText(test.stuck); result != test.expected {
			t.Errorf("StatusText(%d) = %s; ожидалось %s", test.stuck, result, test.expected)
		}
	}
}

