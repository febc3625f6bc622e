// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"path/filepath"
	"testing"
)

func TestSaveConfigThenLoadRoundtrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Config{
		Namespace: NsConfig{
			UIDMap: []MapEntry{NewMapEntry(0, 100000, 65536)},
			GIDMap: []MapEntry{NewMapEntry(0, 100000, 65536)},
		},
		Remotes: []Remote{{Name: "origin", URL: "ssh://example.com/repo"}},
	}

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(loaded.Namespace.UIDMap) != 1 || loaded.Namespace.UIDMap[0].InsideStart != 0 ||
		loaded.Namespace.UIDMap[0].OutsideStart != 100000 || loaded.Namespace.UIDMap[0].Count != 65536 {
		t.Errorf("UIDMap = %+v", loaded.Namespace.UIDMap)
	}
	if len(loaded.Remotes) != 1 || loaded.Remotes[0].Name != "origin" || loaded.Remotes[0].URL != "ssh://example.com/repo" {
		t.Errorf("Remotes = %+v", loaded.Remotes)
	}
}

func TestLoadConfigDefaultsToIdentityWhenNamespaceOmitted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Config{Remotes: nil}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	identity := IdentityNsConfig()
	if !MappingsEqual(loaded.Namespace.UIDMap, identity.UIDMap) {
		t.Errorf("UIDMap = %+v, want the identity mapping", loaded.Namespace.UIDMap)
	}
	if !MappingsEqual(loaded.Namespace.GIDMap, identity.GIDMap) {
		t.Errorf("GIDMap = %+v, want the identity mapping", loaded.Namespace.GIDMap)
	}
}

func TestConfigRemoteFound(t *testing.T) {
	cfg := Config{Remotes: []Remote{
		{Name: "origin", URL: "ssh://a/repo"},
		{Name: "backup", URL: "ssh://b/repo"},
	}}

	r, err := cfg.Remote("backup")
	if err != nil {
		t.Fatalf("Remote: %v", err)
	}
	if r.URL != "ssh://b/repo" {
		t.Errorf("URL = %q, want %q", r.URL, "ssh://b/repo")
	}
}

func TestConfigRemoteMissingReturnsRemoteNotFound(t *testing.T) {
	cfg := Config{Remotes: []Remote{{Name: "origin", URL: "ssh://a/repo"}}}

	_, err := cfg.Remote("nonexistent")
	if err == nil {
		t.Fatal("expected an error looking up a remote that does not exist")
	}
	if _, ok := err.(*RemoteNotFoundError); !ok {
		t.Errorf("expected *RemoteNotFoundError, got %T", err)
	}
}
