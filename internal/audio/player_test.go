package audio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battlecast/battlecast/internal/pipeline"
	"github.com/battlecast/battlecast/internal/pubsub"
	"github.com/battlecast/battlecast/internal/trigger"
)

// mockPlayback records speak/sample calls.
type mockPlayback struct {
	mu      sync.Mutex
	spoken  []string
	samples []string
	volumes []float64
}

func (m *mockPlayback) Speak(text string, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spoken = append(m.spoken, text)
	m.volumes = append(m.volumes, volume)
	return nil
}

func (m *mockPlayback) PlaySample(file string, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, file)
	m.volumes = append(m.volumes, volume)
	return nil
}

func (m *mockPlayback) snapshot() ([]string, []string, []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...),
		append([]string(nil), m.samples...),
		append([]float64(nil), m.volumes...)
}

func TestPlayer_Play_SpeaksAudioEffects(t *testing.T) {
	pb := &mockPlayback{}
	p := NewPlayer(pb, nil, 100)

	p.Play(trigger.Firing{
		TriggerID: "first-blood",
		Effects: []trigger.Effect{
			{Audio: "First blood"},
			{Sample: "horn.ogg"},
		},
	})

	spoken, samples, volumes := pb.snapshot()
	assert.Equal(t, []string{"First blood"}, spoken)
	assert.Equal(t, []string{"horn.ogg"}, samples)
	require.Len(t, volumes, 2)
	assert.InDelta(t, 0.8, volumes[0], 0.001, "full volume scales to 0.8 gain")
}

func TestPlayer_Play_SoundpackFallback(t *testing.T) {
	pb := &mockPlayback{}
	pack := &Soundpack{
		Name:     "test",
		Triggers: map[string]Cue{"kill-streak": {Text: "Rampage"}},
	}
	p := NewPlayer(pb, pack, 50)

	// No audio effects on the firing: the pack cue plays.
	p.Play(trigger.Firing{TriggerID: "kill-streak"})

	spoken, _, volumes := pb.snapshot()
	assert.Equal(t, []string{"Rampage"}, spoken)
	require.Len(t, volumes, 1)
	assert.InDelta(t, 0.4, volumes[0], 0.001)
}

func TestPlayer_Play_EffectSuppressesFallback(t *testing.T) {
	pb := &mockPlayback{}
	pack := &Soundpack{
		Name:     "test",
		Triggers: map[string]Cue{"kill-streak": {Text: "Rampage"}},
	}
	p := NewPlayer(pb, pack, 100)

	p.Play(trigger.Firing{
		TriggerID: "kill-streak",
		Effects:   []trigger.Effect{{Audio: "custom line"}},
	})

	spoken, _, _ := pb.snapshot()
	assert.Equal(t, []string{"custom line"}, spoken)
}

func TestPlayer_Play_VisualOnlyUsesFallback(t *testing.T) {
	pb := &mockPlayback{}
	pack := &Soundpack{
		Name:     "test",
		Triggers: map[string]Cue{"x": {File: "ping.ogg"}},
	}
	p := NewPlayer(pb, pack, 100)

	p.Play(trigger.Firing{
		TriggerID: "x",
		Effects:   []trigger.Effect{{Visual: &trigger.VisualEffect{Type: "unit-highlight"}}},
	})

	spoken, samples, _ := pb.snapshot()
	assert.Empty(t, spoken)
	assert.Equal(t, []string{"ping.ogg"}, samples)
}

func TestPlayer_VolumeClamping(t *testing.T) {
	p := NewPlayer(nil, nil, 150)
	assert.Equal(t, 100, p.MasterVolume())

	p.SetMasterVolume(-5)
	assert.Equal(t, 0, p.MasterVolume())

	p.SetMasterVolume(60)
	assert.Equal(t, 60, p.MasterVolume())
}

func TestPlayer_Start_PlaysBusFirings(t *testing.T) {
	bridge := pubsub.NewWatermillBridge()
	defer bridge.Close()

	pb := &mockPlayback{}
	p := NewPlayer(pb, nil, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx, bridge))

	fired := pipeline.FiredTrigger{
		MessageID: "m1",
		Timestamp: time.Now(),
		Firing: trigger.Firing{
			TriggerID: "first-blood",
			Effects:   []trigger.Effect{{Audio: "First blood"}},
		},
	}
	require.NoError(t, pubsub.Publish(ctx, bridge, pipeline.EventTriggerFired, fired))

	require.Eventually(t, func() bool {
		spoken, _, _ := pb.snapshot()
		return len(spoken) == 1 && spoken[0] == "First blood"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSoundpack_Cue(t *testing.T) {
	var nilPack *Soundpack
	_, ok := nilPack.Cue("anything")
	assert.False(t, ok, "nil pack is safe to query")

	pack := DefaultSoundpack()
	cue, ok := pack.Cue("first-blood")
	require.True(t, ok)
	assert.NotEmpty(t, cue.Text)
}

func TestSoundpack_Action(t *testing.T) {
	pack := &Soundpack{
		Name: "test",
		Triggers: map[string]Cue{
			"spoken":  {Text: "hello"},
			"sampled": {File: "boom.ogg"},
		},
	}

	effect, err := pack.Action("spoken").Execute(nil)
	require.NoError(t, err)
	require.NotNil(t, effect)
	assert.Equal(t, "hello", effect.Audio)

	effect, err = pack.Action("sampled").Execute(nil)
	require.NoError(t, err)
	require.NotNil(t, effect)
	assert.Equal(t, "boom.ogg", effect.Sample)

	effect, err = pack.Action("missing").Execute(nil)
	require.NoError(t, err)
	assert.Nil(t, effect)
}
