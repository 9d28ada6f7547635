package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVault struct {
	values map[string]string
	calls  int
}

func (f *fakeVault) GetSecret(ctx context.Context, name string, version string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, errors.New("SecretNotFound")
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &v}}, nil
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "ADMIN_API_KEY", EnvName("admin-api-key"))
	assert.Equal(t, "PRODUCTDB_URL", EnvName("PRODUCTDB-URL"))
}

func TestProvider_EnvironmentSource(t *testing.T) {
	env := map[string]string{"JWT_SECRET": "s3cret", "OVERRIDE": "from-env"}
	p := &Provider{source: SourceEnvironment, logger: zap.NewNop(), lookupEnv: func(k string) string { return env[k] }}

	v, err := p.GetSecret(context.Background(), "jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = p.GetSecret(context.Background(), "missing-secret")
	assert.Error(t, err)

	v, err = p.GetSecretOrEnv(context.Background(), "missing-secret", "OVERRIDE")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
}

func TestVaultClient_CachesUntilExpiry(t *testing.T) {
	fake := &fakeVault{values: map[string]string{"redis-password": "pw"}}
	client := newVaultClient(fake, &VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		v, err := client.GetSecret(context.Background(), "redis-password")
		require.NoError(t, err)
		assert.Equal(t, "pw", v)
	}
	assert.Equal(t, 1, fake.calls)

	now = now.Add(2 * time.Minute)
	_, err := client.GetSecret(context.Background(), "redis-password")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)

	client.ClearCache()
	_, err = client.GetSecret(context.Background(), "redis-password")
	require.NoError(t, err)
	assert.Equal(t, 3, fake.calls)
}

func TestVaultClient_MissingSecret(t *testing.T) {
	client := newVaultClient(&fakeVault{}, &VaultConfig{VaultName: "kv"}, zap.NewNop())

	_, err := client.GetSecret(context.Background(), "nope")
	assert.Error(t, err)
}

func TestProvider_VaultSource(t *testing.T) {
	fake := &fakeVault{values: map[string]string{"admin-api-key": "vault-key"}}
	p := &Provider{
		source:      SourceVault,
		logger:      zap.NewNop(),
		lookupEnv:   func(string) string { return "" },
		vaultClient: newVaultClient(fake, &VaultConfig{VaultName: "kv"}, zap.NewNop()),
	}

	v, err := p.GetSecretOrEnv(context.Background(), "admin-api-key", "ADMIN_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "vault-key", v)
	assert.True(t, p.IsVaultEnabled())
}
