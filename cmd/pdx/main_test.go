// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apache/geode-native/pdx"
	"github.com/apache/geode-native/pdx/typestore"
)

func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(stdin, &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// writeFixture stores one payload and its type, and returns the store and
// payload paths. The store is closed again so the command can open it.
func writeFixture(t *testing.T) (storePath, payloadPath string) {
	t.Helper()
	dir := t.TempDir()
	storePath = filepath.Join(dir, "types.db")
	store, err := typestore.Open(storePath)
	require.NoError(t, err)

	cache := pdx.NewCache(pdx.WithTypeSource(store), pdx.WithUnreadDataSweepInterval(0))
	inst, err := cache.CreateInstanceFactory("com.example.Cli").
		WriteInt("id", 42).
		WriteString("name", "stored").
		MarkIdentityField("id").
		Create()
	require.NoError(t, err)
	data, err := cache.Serialize(inst)
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	require.NoError(t, store.Close())

	payloadPath = filepath.Join(dir, "value.bin")
	require.NoError(t, os.WriteFile(payloadPath, data, 0600))
	return storePath, payloadPath
}

func TestTypesList(t *testing.T) {
	storePath, _ := writeFixture(t)
	out, err := run(t, nil, "--store", storePath, "types", "list")
	require.NoError(t, err)
	require.Contains(t, out, "typeId")
	require.Contains(t, out, "com.example.Cli")
	require.Contains(t, out, "id")
}

func TestTypesShow(t *testing.T) {
	storePath, _ := writeFixture(t)
	out, err := run(t, nil, "--store", storePath, "types", "show", "1")
	require.NoError(t, err)
	require.Contains(t, out, "com.example.Cli (typeId=1)")
	require.Contains(t, out, "STRING")

	_, err = run(t, nil, "--store", storePath, "types", "show", "abc")
	require.Error(t, err)
	_, err = run(t, nil, "--store", storePath, "types", "show", "9")
	require.Equal(t, pdx.ErrKindUnknownPdxType, pdx.KindOf(err))
}

func TestDump(t *testing.T) {
	storePath, payloadPath := writeFixture(t)
	out, err := run(t, nil, "--store", storePath, "dump", payloadPath)
	require.NoError(t, err)
	require.Contains(t, out, "com.example.Cli (typeId=1)")
	require.Contains(t, out, "stored")
	require.Contains(t, out, "42")

	data, err := os.ReadFile(payloadPath)
	require.NoError(t, err)
	out, err = run(t, bytes.NewReader(data), "--store", storePath, "dump", "-")
	require.NoError(t, err)
	require.Contains(t, out, "stored")

	_, err = run(t, nil, "--store", storePath, "dump", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestDumpPrimitive(t *testing.T) {
	storePath, _ := writeFixture(t)
	out, err := run(t, bytes.NewReader([]byte{byte(pdx.CacheableInt32), 0, 0, 0, 7}), "--store", storePath, "dump", "-")
	require.NoError(t, err)
	require.Equal(t, "int32: 7\n", out)
}

func TestConfigSources(t *testing.T) {
	storePath, _ := writeFixture(t)

	t.Setenv("PDX_STORE", storePath)
	out, err := run(t, nil, "types", "list")
	require.NoError(t, err)
	require.Contains(t, out, "com.example.Cli")
}

func TestConfigFile(t *testing.T) {
	storePath, _ := writeFixture(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("store: "+storePath+"\n"), 0600))
	out, err := run(t, nil, "--config", good, "types", "list")
	require.NoError(t, err)
	require.Contains(t, out, "com.example.Cli")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bogus: 1\n"), 0600))
	_, err = run(t, nil, "--config", bad, "types", "list")
	require.EqualError(t, err, "invalid option in configuration file: bogus")
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, nil, "--log-level", "loud", "types", "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing log level")
}
