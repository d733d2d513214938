package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/config"
	"github.com/hazadus/hitback-cards/internal/deck"
	"github.com/hazadus/hitback-cards/internal/publisher"
)

const tracksEnvelope = `{"success": true, "data": [
	{"id": "001", "title": "Don't Stop Believin'", "artist": "Journey", "genre": "ROCK", "decade": "1980s"},
	{"id": "002", "title": "Billie Jean", "artist": "Michael Jackson", "genre": "POP", "decade": "1980s"}
]}`

// captureOutput перехватывает stdout и stderr во время выполнения функции
func captureOutput(t *testing.T, fn func()) string {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Ошибка создания pipe: %v", err)
	}

	os.Stdout = w
	os.Stderr = w

	// Читаем параллельно, чтобы большой вывод не заблокировал pipe
	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	os.Stdout = oldStdout
	os.Stderr = oldStderr
	w.Close()

	return <-done
}

// testBackend фейковый бэкенд: каталог, скан и сервис QR изображений
type testBackend struct {
	server      *httptest.Server
	failTracks  atomic.Bool
	trackCalls  atomic.Int32
	imageCalls  atomic.Int32
	lastPayload atomic.Value
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{}

	router := mux.NewRouter()
	router.HandleFunc("/api/tracks", func(w http.ResponseWriter, r *http.Request) {
		b.trackCalls.Add(1)
		if b.failTracks.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, tracksEnvelope)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/qr/scan/{payload}", func(w http.ResponseWriter, r *http.Request) {
		b.lastPayload.Store(mux.Vars(r)["payload"])
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success": true, "data": {
			"track": {"title": "Billie Jean", "artist": "Michael Jackson"},
			"question": {"type": "song", "question": "Как называется песня?"},
			"scan": {"filters": {"genre": "POP", "decade": "1980s"}}
		}}`)
	}).Methods(http.MethodPost)

	router.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) {
		b.imageCalls.Add(1)
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprintf(w, "PNG:%s", r.URL.Query().Get("data"))
	}).Methods(http.MethodGet)

	b.server = httptest.NewServer(router)
	t.Cleanup(b.server.Close)
	return b
}

// createTestApplication создает тестовое приложение, настроенное на фейковый бэкенд
func createTestApplication(t *testing.T, backendURL string) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Environment = "local"
	cfg.Environments["local"] = config.EnvironmentConfig{Name: "LOCAL", URL: backendURL, Icon: "🏠"}
	cfg.Retry = config.RetryConfig{MaxAttempts: 2, Timeout: 2 * time.Second, Backoff: time.Millisecond}
	cfg.QR.BaseURL = backendURL + "/qr"
	cfg.DownloadDir = t.TempDir()
	cfg.AudioDir = t.TempDir()

	app := &Application{}
	if err := app.configure(cfg, io.Discard); err != nil {
		t.Fatalf("Ошибка настройки приложения: %v", err)
	}
	return app
}

// TestCmdDeck проверяет вывод таблицы карт
func TestCmdDeck(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	deckCmd := app.createDeckCommand(context.Background())
	output := captureOutput(t, func() {
		deckCmd.SetArgs([]string{})
		if err := deckCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды deck: %v", err)
		}
	})

	for _, expected := range []string{"🃏 Колода: 60 карт", "треков в каталоге: 2 (backend)", "LOCAL"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды deck не содержит '%s': %s", expected, output)
		}
	}
}

// TestCmdDeckPayloads проверяет режим вывода только payload
func TestCmdDeckPayloads(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	deckCmd := app.createDeckCommand(context.Background())
	output := captureOutput(t, func() {
		deckCmd.SetArgs([]string{"--payloads"})
		if err := deckCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды deck: %v", err)
		}
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 60 {
		t.Fatalf("Ожидалось 60 строк, получено %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "HITBACK_TYPE:") {
			t.Errorf("Неожиданная строка payload: %s", line)
		}
	}
}

// TestCmdTracksFallback проверяет откат на встроенный каталог в гибридном режиме
func TestCmdTracksFallback(t *testing.T) {
	backend := newTestBackend(t)
	backend.failTracks.Store(true)
	app := createTestApplication(t, backend.server.URL)

	tracksCmd := app.createTracksCommand(context.Background())
	output := captureOutput(t, func() {
		tracksCmd.SetArgs([]string{})
		if err := tracksCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды tracks: %v", err)
		}
	})

	if !strings.Contains(output, "⚠️  Бэкенд недоступен") {
		t.Errorf("Ожидалось предупреждение о недоступном бэкенде: %s", output)
	}
	if !strings.Contains(output, "источник: fallback") {
		t.Errorf("Ожидался резервный источник: %s", output)
	}
	if got := backend.trackCalls.Load(); got != 2 {
		t.Errorf("Ожидалось 2 попытки загрузки, получено %d", got)
	}
}

// TestCmdSync проверяет, что новыми считаются только треки, которых нет в локальном каталоге
func TestCmdSync(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	// Встроенный каталог уже содержит 001, бэкенд отдает 001 и 002
	if _, err := catalog.FindByID(catalog.StaticTracks(), "001"); err != nil {
		t.Fatalf("Встроенный каталог должен содержать трек 001: %v", err)
	}

	syncCmd := app.createSyncCommand(context.Background())
	output := captureOutput(t, func() {
		syncCmd.SetArgs([]string{})
		if err := syncCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды sync: %v", err)
		}
	})

	for _, expected := range []string{
		"✅ Синхронизация завершена",
		"Треков: 2, карт: 60",
		"🎉 Найдено новых треков: 1",
		"• Michael Jackson - Billie Jean",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды sync не содержит '%s': %s", expected, output)
		}
	}
	if strings.Contains(output, "Journey - Don't Stop Believin'") {
		t.Errorf("Трек 001 уже был в каталоге и не должен считаться новым: %s", output)
	}
	if got := backend.trackCalls.Load(); got != 1 {
		t.Errorf("Ожидался один запрос каталога, получено %d", got)
	}

	snapshot := app.Generator.Snapshot()
	if snapshot.LastSyncID == "" || snapshot.LastSync.IsZero() {
		t.Error("Синхронизация должна отметить время и ID")
	}
	if len(snapshot.NewTracksFound) != 1 || snapshot.NewTracksFound[0].ID != "002" {
		t.Errorf("Новым должен быть только трек 002, получено: %v", snapshot.NewTracksFound)
	}
}

// TestCmdSyncFailure проверяет подсказки при ошибке синхронизации
func TestCmdSyncFailure(t *testing.T) {
	backend := newTestBackend(t)
	backend.failTracks.Store(true)
	app := createTestApplication(t, backend.server.URL)

	syncCmd := app.createSyncCommand(context.Background())
	syncCmd.SilenceUsage = true
	output := captureOutput(t, func() {
		syncCmd.SetArgs([]string{})
		if err := syncCmd.Execute(); err == nil {
			t.Error("Ожидалась ошибка синхронизации")
		}
	})

	if !strings.Contains(output, "--mode static") {
		t.Errorf("Ожидалась подсказка о статическом режиме: %s", output)
	}

	snapshot := app.Generator.Snapshot()
	if len(snapshot.Tracks) != len(catalog.StaticTracks()) || snapshot.LastSyncID != "" {
		t.Errorf("Ошибка синхронизации должна оставить локальный каталог, треков: %d", len(snapshot.Tracks))
	}
}

// TestCmdEnvs проверяет список окружений и отметку активного
func TestCmdEnvs(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	envsCmd := app.createEnvsCommand(context.Background())
	output := captureOutput(t, func() {
		envsCmd.SetArgs([]string{})
		if err := envsCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды envs: %v", err)
		}
	})

	if !strings.Contains(output, "● 🏠 local") {
		t.Errorf("Активное окружение должно быть отмечено: %s", output)
	}
	if !strings.Contains(output, "PRODUCTION") {
		t.Errorf("Ожидалось окружение prod: %s", output)
	}
}

// TestCmdDownload проверяет сохранение изображений всех карт
func TestCmdDownload(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)
	dir := filepath.Join(t.TempDir(), "cards")

	downloadCmd := app.createDownloadCommand(context.Background())
	output := captureOutput(t, func() {
		downloadCmd.SetArgs([]string{dir})
		if err := downloadCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды download: %v", err)
		}
	})

	if !strings.Contains(output, "✅ Сохранено карт: 60") {
		t.Errorf("Ожидалась сводка скачивания: %s", output)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Ошибка чтения каталога: %v", err)
	}
	if len(entries) != 60 {
		t.Errorf("Ожидалось 60 файлов, получено %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, "HITBACK_Card_01.png"))
	if err != nil {
		t.Fatalf("Ошибка чтения первой карты: %v", err)
	}
	if !strings.HasPrefix(string(data), "PNG:HITBACK_TYPE:") {
		t.Errorf("Неожиданное содержимое изображения: %s", data)
	}
}

// TestCmdPublishWithoutS3 проверяет ошибку при отсутствии настроек S3
func TestCmdPublishWithoutS3(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	publishCmd := app.createPublishCommand(context.Background())
	publishCmd.SetOut(io.Discard)
	publishCmd.SetErr(io.Discard)
	publishCmd.SetArgs([]string{})

	err := publishCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "S3 не настроен") {
		t.Errorf("Ожидалась ошибка о ненастроенном S3, получено: %v", err)
	}
}

// memoryStorage хранилище в памяти для проверки публикации
type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memoryStorage) UploadFile(ctx context.Context, reader io.Reader, key, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[key] = data
	return "https://bucket.example/" + key, nil
}

// TestCmdPublishManifestPool проверяет, что оценки пула в манифесте считаются по загруженному каталогу
func TestCmdPublishManifestPool(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)
	storage := &memoryStorage{}

	captureOutput(t, func() {
		if err := app.publishCards(context.Background(), storage); err != nil {
			t.Errorf("Ошибка публикации: %v", err)
		}
	})

	snapshot := app.Generator.Snapshot()
	if len(snapshot.Tracks) != 2 {
		t.Fatalf("Перед публикацией должен загружаться каталог, треков: %d", len(snapshot.Tracks))
	}

	key := path.Join(decksPrefix, snapshot.DeckFingerprint, publisher.ManifestName)
	data, ok := storage.files[key]
	if !ok {
		t.Fatalf("Манифест %s не опубликован", key)
	}

	var cards []deck.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		t.Fatalf("Ошибка разбора манифеста: %v", err)
	}
	if len(cards) != 60 {
		t.Fatalf("Ожидалось 60 карт в манифесте, получено %d", len(cards))
	}
	for _, card := range cards {
		if expected := deck.EstimatePoolSize(card, 2); card.EstimatedPool != expected {
			t.Errorf("Карта %d: ожидалась оценка пула %d, получено %d", card.Number, expected, card.EstimatedPool)
		}
	}
}

// TestCmdScanByNumber проверяет отправку payload карты по ее номеру
func TestCmdScanByNumber(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	scanCmd := app.createScanCommand(context.Background())
	output := captureOutput(t, func() {
		scanCmd.SetArgs([]string{"1"})
		if err := scanCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды scan: %v", err)
		}
	})

	expected := app.Generator.Snapshot().Cards[0].QRPayload
	if got, _ := backend.lastPayload.Load().(string); got != expected {
		t.Errorf("Ожидался payload %s, получено: %s", expected, got)
	}
	if !strings.Contains(output, "Трек: Michael Jackson - Billie Jean") {
		t.Errorf("Ожидался трек из ответа: %s", output)
	}
}

// TestCmdScanInvalidPayload проверяет отказ до обращения к бэкенду
func TestCmdScanInvalidPayload(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	for _, arg := range []string{"HITBACK_TYPE:SONG", "99"} {
		scanCmd := app.createScanCommand(context.Background())
		scanCmd.SetOut(io.Discard)
		scanCmd.SetErr(io.Discard)
		scanCmd.SetArgs([]string{arg})

		if err := scanCmd.Execute(); err == nil {
			t.Errorf("Ожидалась ошибка для %q", arg)
		}
	}
	if backend.lastPayload.Load() != nil {
		t.Error("Некорректный payload не должен отправляться на бэкенд")
	}
}

// TestCmdPlayUnknownTrack проверяет ошибку для неизвестного трека
func TestCmdPlayUnknownTrack(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	playCmd := app.createPlayCommand(context.Background())
	playCmd.SetOut(io.Discard)
	playCmd.SetErr(io.Discard)
	playCmd.SetArgs([]string{"999"})

	err := playCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "999") {
		t.Errorf("Ожидалась ошибка поиска трека, получено: %v", err)
	}
}

// TestCmdPlayWithoutAudio проверяет ошибку для трека без аудиофайла
func TestCmdPlayWithoutAudio(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	playCmd := app.createPlayCommand(context.Background())
	playCmd.SetOut(io.Discard)
	playCmd.SetErr(io.Discard)
	playCmd.SetArgs([]string{"001"})

	if err := playCmd.Execute(); err == nil {
		t.Error("Ожидалась ошибка для трека без аудиофайла")
	}
}

// TestCmdCatalogImport проверяет сборку каталога из каталога с mp3
func TestCmdCatalogImport(t *testing.T) {
	backend := newTestBackend(t)
	app := createTestApplication(t, backend.server.URL)

	musicDir := t.TempDir()
	for _, name := range []string{"Journey - Separate Ways.mp3", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(musicDir, name), []byte("not an mp3"), 0644); err != nil {
			t.Fatalf("Ошибка создания файла: %v", err)
		}
	}
	output := filepath.Join(t.TempDir(), "catalog.yaml")

	importCmd := app.createCatalogImportCommand()
	captureOutput(t, func() {
		importCmd.SetArgs([]string{musicDir, "-o", output})
		if err := importCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды catalog import: %v", err)
		}
	})

	tracks, err := catalog.LoadFile(output)
	if err != nil {
		t.Fatalf("Ошибка загрузки каталога: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("Ожидался 1 трек, получено %d", len(tracks))
	}
	if tracks[0].Artist != "Journey" || tracks[0].Title != "Separate Ways" {
		t.Errorf("Неожиданный трек: %+v", tracks[0])
	}
	if tracks[0].AudioFile != "Journey - Separate Ways.mp3" {
		t.Errorf("Ожидался аудиофайл, получено: %s", tracks[0].AudioFile)
	}
}

// TestLoadConfigFlags проверяет приоритет флагов над переменными окружения
func TestLoadConfigFlags(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HITBACK_MODE", "dynamic")
	t.Setenv("HITBACK_ENV", "local")

	cfg, err := loadConfig(globalFlags{
		configPath: filepath.Join(tempDir, "missing.yaml"),
		envFile:    filepath.Join(tempDir, ".env"),
		env:        "prod",
		mode:       "static",
	})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if cfg.Environment != "prod" {
		t.Errorf("Ожидалось окружение prod, получено: %s", cfg.Environment)
	}
	if cfg.Mode != "static" {
		t.Errorf("Ожидался режим static, получено: %s", cfg.Mode)
	}
}

// TestLoadConfigInvalid проверяет отказ при неизвестном окружении
func TestLoadConfigInvalid(t *testing.T) {
	tempDir := t.TempDir()

	_, err := loadConfig(globalFlags{
		configPath: filepath.Join(tempDir, "missing.yaml"),
		envFile:    filepath.Join(tempDir, ".env"),
		env:        "staging",
	})
	if err == nil {
		t.Error("Ожидалась ошибка для неизвестного окружения")
	}
}

// TestRootCommandFlags проверяет, что общие флаги зарегистрированы
func TestRootCommandFlags(t *testing.T) {
	app := &Application{}
	root := app.createRootCommand(context.Background())

	for _, name := range []string{"config", "env", "mode", "deck", "log-level"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Флаг --%s не зарегистрирован", name)
		}
	}
	for _, name := range []string{"deck", "tracks", "sync", "envs", "download", "publish", "scan", "play", "catalog", "tui"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("Команда %s не найдена: %v", name, err)
		}
	}
}
