package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.json"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"pitch": "down",
		"yaw_base": "fixed",
		"yaw_offset": 180,
		"fake_lag": 6,
		"fog": {"enabled": true, "end": 1200},
		"future_option": {"x": 1}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Pitch = PitchDown
	want.YawBase = YawBaseFixed
	want.YawOffset = -180
	want.FakeLag = 6
	want.Fog.Enabled = true
	want.Fog.End = 1200
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownEnum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pitch": "sideways"}`), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestClamp(t *testing.T) {
	cfg := Default()
	cfg.FakeLag = 99
	cfg.YawOffset = 370
	cfg.ThirdPersonDistance = 5
	cfg.Fog.Color = [3]float32{-1, 0.25, 4}
	cfg.Fog.Start = 500
	cfg.Fog.End = 100
	cfg.Tonemap.ExposureMin = 2
	cfg.Tonemap.ExposureMax = 1
	cfg.Material.Chroma = [4]float32{2, 2, 2, 2}
	cfg.Pitch = Pitch(42)
	cfg.Clamp()

	assert.Equal(t, MaxFakeLag, cfg.FakeLag)
	assert.InDelta(t, 10, cfg.YawOffset, 1e-4)
	assert.Equal(t, float32(minThirdPersonDistance), cfg.ThirdPersonDistance)
	assert.Equal(t, [3]float32{0, 0.25, 1}, cfg.Fog.Color)
	assert.Equal(t, float32(500), cfg.Fog.End)
	assert.Equal(t, float32(2), cfg.Tonemap.ExposureMax)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, cfg.Material.Chroma)
	assert.Equal(t, PitchDefault, cfg.Pitch)
}

func TestSaveIsAtomicAndReadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elysium", "config.json")

	cfg := Default()
	cfg.Pitch = PitchJitter
	cfg.ThirdPerson = true
	cfg.LeafOverride = true
	require.NoError(t, Save(path, cfg))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "jitter", doc["pitch"])
	assert.Equal(t, "view", doc["yaw_base"])
	assert.Equal(t, true, doc["leaf_override"])

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	require.NoError(t, Save(path, Default()))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestSaveFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	assert.Error(t, Save(path, Default()))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")
	assert.True(t, entries[0].IsDir())
}

func TestPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/elysium/config.json", path)
}

func TestEnumText(t *testing.T) {
	for _, p := range []Pitch{PitchDefault, PitchUp, PitchDown, PitchZero, PitchJitter} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var back Pitch
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}
	_, err := Pitch(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "yaw_base(7)", YawBase(7).String())
}
