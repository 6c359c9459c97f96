package toml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	transcriptFileMode = 0o600
	transcriptDirMode  = 0o700
	tempFilePattern    = ".transcript-*.toml.tmp"
)

// TranscriptRepository reads chat transcripts from TOML or JSON files and
// writes them back as TOML.
type TranscriptRepository struct{}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.TranscriptRepository = (*TranscriptRepository)(nil)

func NewTranscriptRepository() *TranscriptRepository {
	return &TranscriptRepository{}
}

func (r *TranscriptRepository) Load(ctx context.Context, path string) ([]domain.ChatTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := normalizeTranscriptPath(path)
	if err != nil {
		return nil, err
	}

	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript file: %w", err)
	}

	file, err := decodeTranscript(path, data)
	if err != nil {
		return nil, err
	}

	return fromSchema(file)
}

func (r *TranscriptRepository) Save(ctx context.Context, path string, turns []domain.ChatTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := normalizeTranscriptPath(path)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	return writeSchema(path, toSchema(turns))
}

// decodeTranscript accepts a TOML document with [[turns]] tables, a JSON
// object with a "turns" array, or a bare JSON array of turns.
func decodeTranscript(path string, data []byte) (fileSchema, error) {
	var file fileSchema

	if strings.EqualFold(filepath.Ext(path), ".json") {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &file.Turns); err != nil {
				return fileSchema{}, fmt.Errorf("decode transcript file: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &file); err != nil {
			return fileSchema{}, fmt.Errorf("decode transcript file: %w", err)
		}
	} else if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode transcript file: %w", err)
	}

	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeTranscriptPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("transcript path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve transcript path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func writeSchema(path string, file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(path), transcriptDirMode); err != nil {
		return fmt.Errorf("create transcript directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode transcript file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp transcript file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp transcript file: %w", err)
	}

	if err := tempFile.Chmod(transcriptFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp transcript file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp transcript file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace transcript file: %w", err)
	}

	cleanup = false
	return nil
}
