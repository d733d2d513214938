package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStaticTracks(t *testing.T) {
	tracks := StaticTracks()

	if len(tracks) != 2 {
		t.Fatalf("Ожидалось 2 статических трека, получено %d", len(tracks))
	}
	if tracks[0].ID != "001" || tracks[1].ID != "121" {
		t.Errorf("Неожиданные ID статических треков: %s, %s", tracks[0].ID, tracks[1].ID)
	}
	if tracks[1].Title != "Despacito" {
		t.Errorf("Ожидался Title: Despacito, получено: %s", tracks[1].Title)
	}

	// Изменение копии не должно влиять на следующий вызов
	tracks[0].Title = "changed"
	if StaticTracks()[0].Title == "changed" {
		t.Error("StaticTracks должен возвращать новую копию")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	track := Normalize(Track{ID: " 42 ", Year: 1987})

	if track.ID != "42" {
		t.Errorf("Ожидался ID: 42, получено: %q", track.ID)
	}
	if track.Title != DefaultTitle {
		t.Errorf("Ожидался Title: %s, получено: %s", DefaultTitle, track.Title)
	}
	if track.Artist != DefaultArtist {
		t.Errorf("Ожидался Artist: %s, получено: %s", DefaultArtist, track.Artist)
	}
	if track.Genre != "ANY" {
		t.Errorf("Ожидался Genre: ANY, получено: %s", track.Genre)
	}
	if track.Decade != "1980s" {
		t.Errorf("Ожидался Decade: 1980s, получено: %s", track.Decade)
	}
	if track.Difficulty != "MEDIUM" {
		t.Errorf("Ожидался Difficulty: MEDIUM, получено: %s", track.Difficulty)
	}
}

func TestNormalizeKeepsValues(t *testing.T) {
	original := Track{
		ID:         "7",
		Title:      "Song",
		Artist:     "Band",
		Genre:      "POP",
		Decade:     "1990s",
		Difficulty: "HARD",
		Year:       2005,
	}

	if got := Normalize(original); got != original {
		t.Errorf("Normalize не должен менять заполненные поля: %+v", got)
	}
}

func TestDecadeOf(t *testing.T) {
	tests := []struct {
		year     int
		expected string
	}{
		{0, "ANY"},
		{-5, "ANY"},
		{1970, "1970s"},
		{1989, "1980s"},
		{2017, "2010s"},
	}

	for _, test := range tests {
		if result := DecadeOf(test.year); result != test.expected {
			t.Errorf("DecadeOf(%d) = %s; ожидалось %s", test.year, result, test.expected)
		}
	}
}

func TestNewTracks(t *testing.T) {
	previous := []Track{{ID: "001"}, {ID: "002"}}
	fetched := []Track{{ID: "002", Title: "changed"}, {ID: "003"}, {ID: "004"}}

	added := NewTracks(previous, fetched)

	if len(added) != 2 {
		t.Fatalf("Ожидалось 2 новых трека, получено %d", len(added))
	}
	if added[0].ID != "003" || added[1].ID != "004" {
		t.Errorf("Ожидались новые треки 003, 004 в порядке загрузки, получено %s, %s", added[0].ID, added[1].ID)
	}
}

func TestNewTracksEmptyPrevious(t *testing.T) {
	fetched := []Track{{ID: "a"}, {ID: "b"}}
	if added := NewTracks(nil, fetched); len(added) != 2 {
		t.Errorf("Все треки должны считаться новыми, получено %d", len(added))
	}
}

func TestWriteAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	tracks := []Track{
		{ID: "001", Title: "One", Artist: "A", Genre: "ROCK", Decade: "1980s", Difficulty: "EASY", AudioFile: "one.mp3"},
		{ID: "002", Title: "Two", Artist: "B", Year: 1994},
	}

	if err := WriteFile(path, tracks); err != nil {
		t.Fatalf("Ошибка записи каталога: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Ошибка загрузки каталога: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Ожидалось 2 трека, получено %d", len(loaded))
	}
	if loaded[0].AudioFile != "one.mp3" {
		t.Errorf("Ожидался AudioFile: one.mp3, получено: %s", loaded[0].AudioFile)
	}
	if loaded[1].Decade != "1990s" {
		t.Errorf("Ожидался Decade: 1990s, получено: %s", loaded[1].Decade)
	}
}

func TestLoadFileWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	content := "tracks:\n  - title: No ID\n    artist: Nobody\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("Ожидалась ошибка для трека без id")
	}
}

func TestFindByID(t *testing.T) {
	tracks := StaticTracks()

	track, err := FindByID(tracks, "121")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if track.Artist != "Luis Fonsi ft. Daddy Yankee" {
		t.Errorf("Неожиданный исполнитель: %s", track.Artist)
	}

	if _, err := FindByID(tracks, "999"); err == nil {
		t.Error("Ожидалась ошибка для несуществующего ID")
	}
}

func TestHead(t *testing.T) {
	tracks := make([]Track, 12)

	head, rest := Head(tracks, 10)
	if len(head) != 10 || rest != 2 {
		t.Errorf("Ожидалось 10 и 2, получено %d и %d", len(head), rest)
	}

	head, rest = Head(tracks[:3], 10)
	if len(head) != 3 || rest != 0 {
		t.Errorf("Ожидалось 3 и 0, получено %d и %d", len(head), rest)
	}
}
