package planner

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prm-planner/internal/geom"
	"prm-planner/internal/roadmap"
	"prm-planner/internal/sampling"
	"prm-planner/internal/visibility"
)

var bounds = sampling.Bounds{XMax: 22, YMax: 22}

func threeRooms(t *testing.T) *visibility.Oracle {
	t.Helper()
	o, err := visibility.New([]geom.Rect{
		{XMin: 6, XMax: 13, YMin: 14, YMax: 22},
		{XMin: 4, XMax: 12, YMin: 0, YMax: 8},
		{XMin: 14, XMax: 22, YMin: 4, YMax: 10},
	})
	require.NoError(t, err)
	return o
}

// splitWorld has a wall from edge to edge, so the two halves never connect.
func splitWorld(t *testing.T) *visibility.Oracle {
	t.Helper()
	o, err := visibility.New([]geom.Rect{{XMin: 10, XMax: 12, YMin: -1, YMax: 23}})
	require.NoError(t, err)
	return o
}

func TestBuild_UntilConnected(t *testing.T) {
	o := threeRooms(t)
	src, dest := geom.Pt(2, 2), geom.Pt(14, 21)

	ep, err := Build(context.Background(), o, src, dest, sampling.NewUniform(bounds, 1), Config{Bounds: bounds})
	require.NoError(t, err)
	require.True(t, ep.Connected)
	require.False(t, math.IsInf(ep.Distance(), 1))
	assert.Equal(t, ep.Attempts, ep.Rejected+ep.Roadmap.Len()-2)

	path, err := ep.Path()
	require.NoError(t, err)
	assert.Equal(t, src, path[0])
	assert.Equal(t, dest, path[len(path)-1])
	assert.InDelta(t, ep.Distance(), roadmap.PathLength(path), roadmap.DefaultPathTolerance*float64(len(path)))
	require.NoError(t, ep.Roadmap.Audit())
}

func TestBuild_FixedBudget(t *testing.T) {
	o := threeRooms(t)
	cfg := Config{Bounds: bounds, Mode: FixedBudget, NodeBudget: 25}

	ep, err := Build(context.Background(), o, geom.Pt(2, 2), geom.Pt(14, 21), sampling.NewUniform(bounds, 5), cfg)
	require.NoError(t, err)
	assert.Equal(t, 25, ep.Roadmap.Len())
	for _, p := range ep.Roadmap.Nodes() {
		assert.True(t, o.Clear(p), "%v", p)
	}
}

func TestBuild_EnclosedDestination(t *testing.T) {
	o, err := visibility.New([]geom.Rect{{XMin: 12, XMax: 20, YMin: 12, YMax: 20}})
	require.NoError(t, err)
	src, dest := geom.Pt(1, 1), geom.Pt(16, 16)

	ep, err := Build(context.Background(), o, src, dest, sampling.NewUniform(bounds, 2), Config{Bounds: bounds})
	require.ErrorIs(t, err, ErrSeedBlocked)
	require.NotNil(t, ep)
	assert.Zero(t, ep.Attempts)

	ep, err = Build(context.Background(), o, src, dest, sampling.NewUniform(bounds, 2),
		Config{Bounds: bounds, Mode: FixedBudget, NodeBudget: 60})
	require.NoError(t, err)
	assert.Equal(t, 60, ep.Roadmap.Len())
	assert.False(t, ep.Connected)
	assert.True(t, math.IsInf(ep.Distance(), 1))
}

func TestBuild_AttemptCeiling(t *testing.T) {
	ep, err := Build(context.Background(), splitWorld(t), geom.Pt(2, 2), geom.Pt(20, 20),
		sampling.NewUniform(bounds, 3), Config{Bounds: bounds, MaxAttempts: 200})

	require.ErrorIs(t, err, ErrSamplingExhausted)
	require.True(t, IsPlanningFailure(err))
	require.NotNil(t, ep)
	assert.Equal(t, 200, ep.Attempts)
	assert.False(t, ep.Connected)
}

func TestBuild_NodeCeiling(t *testing.T) {
	ep, err := Build(context.Background(), splitWorld(t), geom.Pt(2, 2), geom.Pt(20, 20),
		sampling.NewUniform(bounds, 3), Config{Bounds: bounds, NodeBudget: 10})

	require.ErrorIs(t, err, ErrNodeBudgetReached)
	assert.Equal(t, 10, ep.Roadmap.Len())
}

func TestBuild_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ep, err := Build(ctx, splitWorld(t), geom.Pt(2, 2), geom.Pt(20, 20), sampling.NewUniform(bounds, 3), Config{Bounds: bounds})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, IsPlanningFailure(err))
	assert.Zero(t, ep.Attempts)
}

func TestBuild_InvalidInput(t *testing.T) {
	o := threeRooms(t)
	s := sampling.NewUniform(bounds, 1)

	_, err := Build(context.Background(), o, geom.Pt(2, 2), geom.Pt(14, 21), s, Config{Bounds: bounds, Mode: FixedBudget})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Build(context.Background(), o, geom.Pt(2, 2), geom.Pt(2, 2), s, Config{Bounds: bounds})
	require.ErrorIs(t, err, roadmap.ErrDuplicatePoint)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Bounds: bounds}.Validate())
	assert.ErrorIs(t, Config{Bounds: sampling.Bounds{XMax: -1}}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Bounds: sampling.Bounds{XMax: 1e19, YMax: 10}}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Bounds: sampling.Bounds{XMax: math.Inf(1)}}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Bounds: sampling.Bounds{YMax: math.NaN()}}.Validate(), ErrInvalidConfig)
	assert.NoError(t, Config{Bounds: sampling.Bounds{XMax: sampling.MaxBound, YMax: sampling.MaxBound}}.Validate())
	assert.ErrorIs(t, Config{Mode: Mode(9)}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{MaxAttempts: -1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Mode: FixedBudget, NodeBudget: 1}.Validate(), ErrInvalidConfig)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":                UntilConnected,
		"until_connected": UntilConnected,
		"FIXED_BUDGET":    FixedBudget,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("forever")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "fixed_budget", FixedBudget.String())
}

func TestNewSampler(t *testing.T) {
	s, err := NewSampler("corners", []geom.Rect{{XMin: 2, XMax: 4, YMin: 2, YMax: 4}}, bounds, 1)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(1, 1), s.Next())

	s, err = NewSampler("", nil, bounds, 1)
	require.NoError(t, err)
	assert.IsType(t, &sampling.Uniform{}, s)

	_, err = NewSampler("halton", nil, bounds, 1)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunTrials(t *testing.T) {
	o, err := visibility.New(nil)
	require.NoError(t, err)

	stats, err := RunTrials(context.Background(), o, geom.Pt(0, 0), geom.Pt(3, 4), TrialConfig{
		Base:    Config{Bounds: sampling.Bounds{XMax: 10, YMax: 10}},
		Budgets: []int{2, 5},
		Trials:  3,
		Seed:    1,
	})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	for _, s := range stats {
		assert.Equal(t, 3, s.Trials)
		assert.Equal(t, 3, s.Connected)
		assert.Equal(t, 1.0, s.ConnectionRate())
		assert.Equal(t, 5.0, s.MeanLength)
		assert.Equal(t, 5.0, s.MinLength)
		assert.Equal(t, 5.0, s.MaxLength)
	}
	assert.Equal(t, 2, stats[0].Budget)
	assert.Zero(t, stats[0].MeanAttempts)

	_, err = RunTrials(context.Background(), o, geom.Pt(0, 0), geom.Pt(3, 4), TrialConfig{Budgets: []int{5}})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunTrials_CountsDisconnectedEpisodes(t *testing.T) {
	stats, err := RunTrials(context.Background(), splitWorld(t), geom.Pt(2, 2), geom.Pt(20, 20), TrialConfig{
		Base:    Config{Bounds: bounds},
		Budgets: []int{8},
		Trials:  2,
		Sampler: SamplerCorners,
	})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Trials)
	assert.Zero(t, stats[0].Connected)
	assert.Zero(t, stats[0].MeanLength)
	assert.Zero(t, stats[0].MinLength)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	o := threeRooms(t)
	ep, err := Build(ctx, o, geom.Pt(2, 2), geom.Pt(14, 21), sampling.NewUniform(bounds, 11),
		Config{Bounds: bounds, Mode: FixedBudget, NodeBudget: 30})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "roadmap.json")
	require.NoError(t, SaveSnapshot(ctx, ep, path))

	loaded, err := LoadSnapshot(ctx, path)
	require.NoError(t, err)

	if diff := cmp.Diff(ep.Roadmap.Nodes(), loaded.Roadmap.Nodes()); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ep.Roadmap.DirectEdges(), loaded.Roadmap.DirectEdges()); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ep.Config, loaded.Config)
	assert.Equal(t, ep.Attempts, loaded.Attempts)
	assert.Equal(t, ep.Connected, loaded.Connected)
	assert.Equal(t, o.Obstacles(), loaded.Oracle.Obstacles())
	if ep.Connected {
		assert.Equal(t, ep.Distance(), loaded.Distance())
	}
}

func TestLoadSnapshot_Errors(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	snap := &Snapshot{
		Source:      geom.Pt(0, 0),
		Destination: geom.Pt(5, 5),
		Mode:        "until_connected",
		Points:      []geom.Point{{X: 1, Y: 1}, {X: 1, Y: 1}},
	}
	_, err = snap.Restore()
	require.ErrorIs(t, err, roadmap.ErrDuplicatePoint)
}
