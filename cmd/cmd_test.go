package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"server", "worker", "user", "restaurant", "slots", "keys", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestDemoRestaurant(t *testing.T) {
	repo := restaurants.NewMemoryRepo()
	r, err := seedDemo(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, "demo-bistro", r.Slug)
	assert.NoError(t, r.Parameters.Validate())
	assert.True(t, r.Parameters.ScheduleFor(time.Monday, r.OpeningHours).Closed)
	assert.Equal(t, reservation.Clock(12, 0), r.Parameters.ScheduleFor(time.Friday, r.OpeningHours).Ranges[0].Open)

	_, err = seedDemo(context.Background(), repo)
	assert.ErrorIs(t, err, restaurants.ErrSlugExists)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"19:00", "19:15"}, splitCSV(" 19:00, ,19:15,"))
	assert.Nil(t, splitCSV(""))
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestKeysCmd(t *testing.T) {
	out, err := runRoot(t, "keys", "--format", "dotenv", "--block-bytes", "16")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	hash, ok := strings.CutPrefix(lines[0], "COOKIE_HASH_KEY=")
	require.True(t, ok, lines[0])
	block, ok := strings.CutPrefix(lines[1], "COOKIE_BLOCK_KEY=")
	require.True(t, ok, lines[1])

	b, err := base64.StdEncoding.DecodeString(hash)
	require.NoError(t, err)
	assert.Len(t, b, 32)
	b, err = base64.StdEncoding.DecodeString(block)
	require.NoError(t, err)
	assert.Len(t, b, 16)

	out, err = runRoot(t, "keys")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "export COOKIE_HASH_KEY="), out)

	_, err = runRoot(t, "keys", "--block-bytes", "20")
	assert.Error(t, err)
	_, err = runRoot(t, "keys", "--format", "yaml")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tablebook dev (commit=none")
}
