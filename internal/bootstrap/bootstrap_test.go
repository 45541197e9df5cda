package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"doi-frontend/config"
	"doi-frontend/contracts"
	"doi-frontend/internal/chain"
	"doi-frontend/internal/contract/contracttest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simulatedDialer(sim *contracttest.Simulated) Option {
	return WithDialer(func(ctx context.Context) (chain.Ledger, error) { return sim, nil })
}

func testConf() *config.Conf {
	conf := config.Default()
	conf.Chain.ReceiptPollIntervalMs = 1
	conf.Journal.Driver = "memory"
	return conf
}

func TestNewWiresViewJournalAndMetrics(t *testing.T) {
	sim := contracttest.New()
	app, err := New(testConf(), simulatedDialer(sim))
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	require.NoError(t, app.View.Init(ctx))
	id, err := app.View.SubmitRecord(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	recent, err := app.View.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "doc", recent[0].Payload)

	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.Calls.WithLabelValues("eth_accounts", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.Calls.WithLabelValues("eth_sendTransaction", "ok")))

	mfs, err := app.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["doi_ledger_calls_total"])
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["doi_contract_up"])

	app.Monitor.Probe()
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Monitor.Objects))
}

func TestConfiguredSigner(t *testing.T) {
	sim := contracttest.New()
	conf := testConf()
	conf.Chain.Signer = contracttest.DefaultAccounts[1].Hex()

	app, err := New(conf, simulatedDialer(sim))
	require.NoError(t, err)
	require.NoError(t, app.View.Init(context.Background()))
	assert.Equal(t, contracttest.DefaultAccounts[1].Hex(), app.View.Snapshot().Signer)
}

func TestArtifactPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DigitalObjectIdentifier.json")
	require.NoError(t, os.WriteFile(path, contracts.Bundled(), 0o644))

	conf := testConf()
	conf.Chain.ArtifactPath = path
	app, err := New(conf, simulatedDialer(contracttest.New()))
	require.NoError(t, err)
	require.NoError(t, app.View.Init(context.Background()))
	assert.NotEmpty(t, app.View.Snapshot().Contract)

	conf.Chain.ArtifactPath = filepath.Join(t.TempDir(), "missing.json")
	_, err = New(conf)
	assert.Error(t, err)
}

func TestNoJournal(t *testing.T) {
	conf := testConf()
	conf.Journal.Driver = ""
	app, err := New(conf, simulatedDialer(contracttest.New()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.View.Init(ctx))
	_, err = app.View.SubmitRecord(ctx, "x")
	require.NoError(t, err)
	recent, err := app.View.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
