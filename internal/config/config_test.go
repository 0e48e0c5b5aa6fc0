package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/totegamma/rebento"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(c.Storage.Gateways) != 3 || c.Storage.Gateways[0] != "https://arweave.net" {
		t.Fatalf("unexpected gateways %v", c.Storage.Gateways)
	}
	if c.Storage.QueryLimit != 5 || c.Cache.ProcessID == "" {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	signer, err := rebento.GenerateKeySigner()
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "nodeInfo:\n  fqdn: example.com\n  privatekey: " + signer.PrivateKeyHex() + "\nserver:\n  redisAddr: localhost:6379\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("REBENTO_GATEWAYS", "https://a.test, https://b.test")
	t.Setenv("REBENTO_REDIS_DB", "3")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.NodeInfo.FQDN != "example.com" || c.Server.RedisAddr != "localhost:6379" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.NodeInfo.Address != signer.Address() {
		t.Fatalf("expected derived address %s got %s", signer.Address(), c.NodeInfo.Address)
	}
	if len(c.Storage.Gateways) != 2 || c.Storage.Gateways[1] != "https://b.test" || c.Server.RedisDB != 3 {
		t.Fatalf("env overrides not applied: %+v", c)
	}
	if c.Cache.BaseURL == "" {
		t.Fatalf("defaults should survive a partial file")
	}
}

func TestLoadRejectsBadKey(t *testing.T) {
	t.Setenv("REBENTO_PRIVATE_KEY", "not-hex")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
