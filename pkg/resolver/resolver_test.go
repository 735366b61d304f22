package resolver

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "resolver_test",
		Level: hclog.Trace,
	})
}

func newTestResolver(t *testing.T, editions []catalog.Edition, features ...catalog.Feature) *Resolver {
	t.Helper()
	cat, err := catalog.New(editions, features)
	require.NoError(t, err)
	return New(cat, WithLogger(testLogger()))
}

func feature(name, def, enable, disable string) catalog.Feature {
	return catalog.Feature{
		Hash:         catalog.StringHash(name),
		DefaultToken: def,
		EnableToken:  enable,
		DisableToken: disable,
	}
}

func TestIsEnabled_EmptyCatalog(t *testing.T) {
	r := New(catalog.Empty())
	r.SelectEditionExplicit("en", 99, 99, 0)

	for _, name := range []string{"", "anything", "NewShop", "🎮"} {
		assert.False(t, r.IsEnabled(name), name)
	}
}

func TestIsEnabled_NilCatalog(t *testing.T) {
	r := New(nil)
	r.SelectEditionExplicit("en", 1, 0, 0)
	assert.False(t, r.IsEnabled("x"))
	assert.Zero(t, r.Catalog().FeatureCount())
}

func TestIsEnabled_NoActiveEdition(t *testing.T) {
	r := newTestResolver(t, nil, feature("Always", "G0S0", "", ""))

	assert.False(t, r.IsEnabled("Always"))
	_, ok := r.Active()
	assert.False(t, ok)
	assert.Equal(t, ReasonNoEdition, r.Explain("Always").Reason)

	r.SelectEditionExplicit("en", 0, 0, 0)
	assert.True(t, r.IsEnabled("Always"))
}

func TestIsEnabled_DefaultOnly(t *testing.T) {
	r := newTestResolver(t, nil, feature("Shop", "G1S0", "", ""))

	tests := []struct {
		generation, season int
		want               bool
	}{
		{1, 0, true},
		{0, 50, false},
		{0, 99, false},
		{1, 1, true},
		{7, 0, true},
	}
	for _, tt := range tests {
		r.SelectEditionExplicit("en", tt.generation, tt.season, 0)
		assert.Equal(t, tt.want, r.IsEnabled("Shop"), "G%dS%d", tt.generation, tt.season)
	}
}

func TestIsEnabled_EnableTokenOverride(t *testing.T) {
	r := newTestResolver(t, nil, feature("Guild", "", "G2S0@en", ""))

	r.SelectEditionExplicit("en", 1, 50, 0)
	assert.False(t, r.IsEnabled("Guild"), "active 150")

	r.SelectEditionExplicit("en", 2, 0, 0)
	assert.True(t, r.IsEnabled("Guild"), "active 200")
	assert.Equal(t, ReasonEnable, r.Explain("Guild").Reason)

	r.SelectEditionExplicit("de", 5, 0, 0)
	assert.False(t, r.IsEnabled("Guild"), "other locale at 500")
	assert.Equal(t, ReasonDefault, r.Explain("Guild").Reason)
}

func TestIsEnabled_DisableTokenPrecedence(t *testing.T) {
	r := newTestResolver(t, nil, feature("Legacy", "G0S0", "", "G5S0@en"))

	r.SelectEditionExplicit("en", 0, 0, 0)
	assert.True(t, r.IsEnabled("Legacy"), "active 0")

	r.SelectEditionExplicit("en", 5, 0, 0)
	assert.False(t, r.IsEnabled("Legacy"), "active 500")
	d := r.Explain("Legacy")
	assert.Equal(t, ReasonDisable, d.Reason)
	assert.Equal(t, int64(500), d.DisableCode)

	for _, gen := range []int{0, 5, 9} {
		r.SelectEditionExplicit("fr", gen, 0, 0)
		assert.True(t, r.IsEnabled("Legacy"), "fr G%dS0", gen)
	}
}

func TestIsEnabled_DisableOverridesEnableToken(t *testing.T) {
	r := newTestResolver(t, nil, feature("Event", "", "G1S0@en", "G1S5@en"))

	r.SelectEditionExplicit("en", 1, 2, 0)
	assert.True(t, r.IsEnabled("Event"))

	r.SelectEditionExplicit("en", 1, 5, 0)
	assert.False(t, r.IsEnabled("Event"))
}

func TestIsEnabled_DisableIgnoredWhenNotEnabled(t *testing.T) {
	r := newTestResolver(t, nil, feature("Off", "G9S0", "", "G0S0@en"))

	r.SelectEditionExplicit("en", 1, 0, 0)
	d := r.Explain("Off")
	assert.False(t, d.Enabled)
	assert.Equal(t, ReasonDefault, d.Reason)
	assert.Zero(t, d.DisableCode)
}

func TestIsEnabled_UnparsableDefaultNeverEnables(t *testing.T) {
	r := newTestResolver(t, nil, feature("Odd", "always", "", ""))

	r.SelectEditionExplicit("en", 255, 255, 0)
	assert.False(t, r.IsEnabled("Odd"))
}

func TestIsEnabledHash(t *testing.T) {
	r := newTestResolver(t, nil, catalog.Feature{Hash: 0xCAFEBABE, DefaultToken: "G0S1"})

	r.SelectEditionExplicit("en", 0, 1, 0)
	assert.True(t, r.IsEnabledHash(0xCAFEBABE))
	assert.False(t, r.IsEnabledHash(0xCAFEBABF))
}

func TestSelectEdition_Disambiguation(t *testing.T) {
	r := newTestResolver(t,
		[]catalog.Edition{
			{Name: "live", Locale: "en", Generation: 1, Season: 0},
			{Name: "ptr", Locale: "en", Generation: 2, Season: 0, IsTest: true},
			{Name: "dev", Locale: "en", Generation: 3, Season: 0, IsTest: true, IsDevelopment: true},
			{Name: "ptr-late", Locale: "en", Generation: 4, Season: 0, IsTest: true},
			{Name: "live-de", Locale: "de", Generation: 5, Season: 0},
		},
		feature("Gen2", "G2S0", "", ""),
	)

	require.NoError(t, r.SelectEdition("en", false, false))
	ac, _ := r.Active()
	assert.Equal(t, "live", ac.Edition)
	assert.False(t, r.IsEnabled("Gen2"))

	require.NoError(t, r.SelectEdition("en", true, false))
	ac, _ = r.Active()
	assert.Equal(t, "ptr", ac.Edition)
	assert.Equal(t, int64(200), ac.Code)
	assert.True(t, r.IsEnabled("Gen2"))

	require.NoError(t, r.SelectEdition("en", true, true))
	ac, _ = r.Active()
	assert.Equal(t, "dev", ac.Edition)

	require.NoError(t, r.SelectEdition("de", false, false))
	ac, _ = r.Active()
	assert.Equal(t, "de", ac.Locale)
	assert.Equal(t, int64(500), ac.Code)
}

func TestSelectEdition_NotFoundKeepsContext(t *testing.T) {
	r := newTestResolver(t,
		[]catalog.Edition{{Name: "live", Locale: "en", Generation: 3, Season: 1}},
		feature("F", "G3S0", "", ""),
	)

	require.NoError(t, r.SelectEdition("en", false, false))
	before, _ := r.Active()

	err := r.SelectEdition("en", false, true)
	require.ErrorIs(t, err, ErrEditionNotFound)

	after, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.True(t, r.IsEnabled("F"))
}

func TestSelectEdition_NotFoundWithoutContext(t *testing.T) {
	r := newTestResolver(t, nil)
	assert.ErrorIs(t, r.SelectEdition("en", false, false), ErrEditionNotFound)
	_, ok := r.Active()
	assert.False(t, ok)
}

func TestSelectEditionExplicit_SubseasonIgnored(t *testing.T) {
	r := newTestResolver(t, nil, feature("F", "G2S3", "", ""))

	r.SelectEditionExplicit("en", 2, 3, 0)
	a := r.IsEnabled("F")
	r.SelectEditionExplicit("en", 2, 3, 63)
	b := r.IsEnabled("F")
	assert.Equal(t, a, b)

	ac, _ := r.Active()
	assert.Equal(t, 63, ac.Subseason)
	assert.Equal(t, int64(203), ac.Code)
}

func TestSwapCatalog_KeepsContext(t *testing.T) {
	r := newTestResolver(t, nil)
	r.SelectEditionExplicit("en", 1, 0, 0)
	assert.False(t, r.IsEnabled("New"))

	next, err := catalog.New(nil, []catalog.Feature{feature("New", "G1S0", "", "")})
	require.NoError(t, err)
	r.SwapCatalog(next)

	assert.True(t, r.IsEnabled("New"))
	assert.Same(t, next, r.Catalog())
}

func TestResolver_ConcurrentSelectAndQuery(t *testing.T) {
	r := newTestResolver(t, nil, feature("F", "", "G1S0@en", ""))
	r.SelectEditionExplicit("de", 9, 0, 0)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				r.SelectEditionExplicit("en", 1, 0, 0)
			} else {
				r.SelectEditionExplicit("de", 9, 0, 0)
			}
		}
		close(stop)
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ac, ok := r.Active()
				if !ok {
					t.Error("context vanished")
					return
				}
				if (ac.Locale == "en") != (ac.Code == 100) {
					t.Errorf("torn context: %+v", ac)
					return
				}
				_ = r.IsEnabled("F")
			}
		}()
	}

	wg.Wait()
}
