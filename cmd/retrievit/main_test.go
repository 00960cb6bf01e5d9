package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestCorpusFlags(t *testing.T) {
	flags := corpusFlags()

	findString := func(name string) *cli.StringFlag {
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
				return f
			}
		}
		return nil
	}

	t.Run("db has default value", func(t *testing.T) {
		dbFlag := findString("db")
		require.NotNil(t, dbFlag)
		assert.Equal(t, "./retrievit_db", dbFlag.Value)
		assert.Contains(t, dbFlag.EnvVars, "RETRIEVIT_DB")
	})

	t.Run("host has default value", func(t *testing.T) {
		hostFlag := findString("host")
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
		assert.Contains(t, hostFlag.EnvVars, "RETRIEVIT_HOST")
	})

	t.Run("models have default values", func(t *testing.T) {
		embeddingFlag := findString("embedding-model")
		require.NotNil(t, embeddingFlag)
		assert.Equal(t, "embeddinggemma", embeddingFlag.Value)

		chatFlag := findString("chat-model")
		require.NotNil(t, chatFlag)
		assert.Equal(t, "qwen2.5:3b", chatFlag.Value)
	})

	t.Run("api-token has no default value", func(t *testing.T) {
		tokenFlag := findString("api-token")
		require.NotNil(t, tokenFlag)
		assert.Empty(t, tokenFlag.Value)
	})
}

func TestExpandArgs(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "c.txt"} {
		err := os.WriteFile(filepath.Join(tmpDir, name), []byte("content"), 0644)
		require.NoError(t, err)
	}

	t.Run("glob pattern matches files", func(t *testing.T) {
		files, err := expandArgs([]string{filepath.Join(tmpDir, "*.md")})
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("literal path passes through", func(t *testing.T) {
		path := filepath.Join(tmpDir, "c.txt")
		files, err := expandArgs([]string{path})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, path, files[0])
	})

	t.Run("unmatched pattern falls back to literal", func(t *testing.T) {
		files, err := expandArgs([]string{"no-such-file.md"})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "no-such-file.md", files[0])
	})

	t.Run("multiple arguments accumulate", func(t *testing.T) {
		files, err := expandArgs([]string{
			filepath.Join(tmpDir, "*.md"),
			filepath.Join(tmpDir, "*.txt"),
		})
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
