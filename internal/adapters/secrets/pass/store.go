package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
)

// DefaultPrefix namespaces entries inside the user's password store.
const DefaultPrefix = "helpdesk-assistant"

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store shells out to pass(1).
type Store struct {
	prefix string
	run    runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	return &Store{prefix: prefix, run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := s.entry(key)
	if _, stderr, err := s.run(ctx, value+"\n", "insert", "--multiline", "--force", entry); err != nil {
		return formatError("put", entry, err, stderr)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entry := s.entry(key)
	stdout, stderr, err := s.run(ctx, "", "show", entry)
	if err != nil {
		if strings.Contains(stderr, "is not in the password store") {
			return "", fmt.Errorf("pass entry %q: %w", entry, domain.ErrSecretNotFound)
		}
		return "", formatError("get", entry, err, stderr)
	}

	// pass appends a newline; multi-line entries keep their first line only.
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := s.entry(key)
	if _, stderr, err := s.run(ctx, "", "rm", "--force", entry); err != nil {
		return formatError("delete", entry, err, stderr)
	}
	return nil
}

func (s *Store) entry(key string) string {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	bin, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, entry string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, entry, err)
	}
	return fmt.Errorf("pass %s %q: %w: %s", op, entry, err, stderr)
}
