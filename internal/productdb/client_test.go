package productdb_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/productdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildConnectionString(t *testing.T) {
	connStr, err := productdb.BuildConnectionString(&config.ProductDatabaseConfig{
		URL:      "sql.example.net:1444/products",
		User:     "reader",
		Password: "p@ss word",
	})
	require.NoError(t, err)

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "sql.example.net:1444", u.Host)
	assert.Equal(t, "reader", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "products", u.Query().Get("database"))
	assert.Equal(t, "ReadOnly", u.Query().Get("ApplicationIntent"))
}

func TestBuildConnectionString_DefaultPort(t *testing.T) {
	connStr, err := productdb.BuildConnectionString(&config.ProductDatabaseConfig{URL: "sqlhost", User: "u", Password: "p"})
	require.NoError(t, err)

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "sqlhost:1433", u.Host)
	assert.Empty(t, u.Query().Get("database"))
}

func TestBuildConnectionString_Empty(t *testing.T) {
	_, err := productdb.BuildConnectionString(&config.ProductDatabaseConfig{})
	assert.Error(t, err)
}

func TestNewClient_DisabledOrMissingCredentials(t *testing.T) {
	c, err := productdb.NewClient(&config.ProductDatabaseConfig{Enabled: false}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = productdb.NewClient(&config.ProductDatabaseConfig{Enabled: true, URL: "host"}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, c)
	assert.False(t, c.IsEnabled())
	assert.Equal(t, "disabled", c.HealthCheck(context.Background()).Status)
	assert.NoError(t, c.Close())
}

func TestLikeEscape(t *testing.T) {
	assert.Equal(t, "100[%] [_]led[[]", productdb.LikeEscape("100% _led["))
}
