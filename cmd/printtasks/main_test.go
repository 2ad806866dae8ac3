package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-core-api/internal/model"
)

func TestPrintTasks(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	done := created.Add(time.Hour)

	var buf bytes.Buffer
	err := printTasks(&buf, []model.Task{
		{ID: 1, Name: "open task", CreatedAt: created},
		{ID: 2, Name: "finished", CreatedAt: created, CompletedAt: &done},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "open task")
	assert.Contains(t, lines[1], "open")
	assert.True(t, strings.HasSuffix(lines[1], "-"))
	assert.Contains(t, lines[2], "done")
	assert.Contains(t, lines[2], "2024-05-01T13:00:00Z")
}

func TestPrintTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTasks(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestPrintTasks_ControlCharactersInName(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := printTasks(&buf, []model.Task{
		{ID: 1, Name: "multi\nline\tname", CreatedAt: created},
		{ID: 2, Name: "plain", CreatedAt: created},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "multi line name")
	// столбец статуса выровнен в обеих строках
	assert.Equal(t, strings.Index(lines[1], "open"), strings.Index(lines[2], "open"))
}
