package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOOKMARKET_SERVER_PORT", "9090")
	t.Setenv("BOOKMARKET_DATABASE_DRIVER", "memory")
	t.Setenv("BOOKMARKET_APP_BASE_URL", "https://books.example.com/")
	t.Setenv("BOOKMARKET_STRIPE_WEBHOOK_SECRET", "whsec_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "https://books.example.com", cfg.App.BaseURL, "去掉末尾斜杠")
	assert.Equal(t, "whsec_test", cfg.Stripe.WebhookSecret)
	assert.Equal(t, "booktreasure", cfg.Cloudinary.Folder)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
}

func TestValidate(t *testing.T) {
	base := func() *viper.Viper {
		v := viper.New()
		setDefaults(v)
		return v
	}

	t.Run("非法端口", func(t *testing.T) {
		v := base()
		v.Set("server.port", 70000)
		_, err := unmarshal(v)
		assert.Error(t, err)
	})

	t.Run("非法驱动", func(t *testing.T) {
		v := base()
		v.Set("database.driver", "postgres")
		_, err := unmarshal(v)
		assert.Error(t, err)
	})

	t.Run("release模式必须修改JWT密钥", func(t *testing.T) {
		v := base()
		v.Set("server.mode", "release")
		v.Set("stripe.secret_key", "sk")
		v.Set("stripe.webhook_secret", "whsec")
		_, err := unmarshal(v)
		assert.Error(t, err)
	})

	t.Run("release模式配置齐全", func(t *testing.T) {
		v := base()
		v.Set("server.mode", "release")
		v.Set("jwt.secret", "prod-secret")
		v.Set("stripe.secret_key", "sk")
		v.Set("stripe.webhook_secret", "whsec")
		_, err := unmarshal(v)
		assert.NoError(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 3306, DBName: "db", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai"}
	assert.Equal(t, "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", d.DSN())
}
