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
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/table"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apache/geode-native/pdx"
)

func newDumpCommand(g *globalFlags, stdin io.Reader, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Decode a serialized value",
		Long: `Decode a serialized value and print it. PDX payloads are printed as a
table of fields, with types resolved through the type store. Use - to read
from standard input.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			data, err := readInput(args[0], stdin)
			if err != nil {
				return err
			}
			store, err := openStore(g)
			if err != nil {
				return err
			}
			defer store.Close()
			cache := pdx.NewCache(
				pdx.WithTypeSource(store),
				pdx.WithReadSerialized(true),
				pdx.WithUnreadDataSweepInterval(0),
				pdx.WithLogger(logrus.StandardLogger()),
			)
			defer cache.Close()
			v, err := cache.Deserialize(data)
			if err != nil {
				return errors.Wrapf(err, "decoding %s", args[0])
			}
			return writeValue(stdout, v)
		},
	}
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		return data, errors.Wrap(err, "reading standard input")
	}
	data, err := os.ReadFile(name)
	return data, errors.Wrapf(err, "reading %s", name)
}

func writeValue(w io.Writer, v any) error {
	inst, ok := v.(*pdx.Instance)
	if !ok {
		fmt.Fprintf(w, "%T: %v\n", v, v)
		return nil
	}
	fmt.Fprintf(w, "%s (typeId=%d)\n", inst.ClassName(), inst.Type().TypeID())
	t := newTable(w)
	t.AppendHeader(table.Row{"name", "kind", "value"})
	for _, name := range inst.FieldNames() {
		kind, _ := inst.FieldKind(name)
		fv, err := inst.Field(name)
		if err != nil {
			return errors.Wrapf(err, "reading field %s", name)
		}
		t.AppendRow(table.Row{name, kind.String(), formatValue(fv)})
	}
	t.Render()
	return nil
}

func formatValue(fv pdx.FieldValue) string {
	switch v := fv.(type) {
	case nil:
		return "null"
	case pdx.DateValue:
		if v.Time().IsZero() {
			return "null"
		}
		return v.Time().Format("2006-01-02T15:04:05.000Z07:00")
	case pdx.ObjectValue:
		if inst, ok := v.V.(*pdx.Instance); ok {
			return fmt.Sprintf("%s{...}", inst.ClassName())
		}
		if v.V == nil {
			return "null"
		}
	}
	return fmt.Sprintf("%v", fv.Value())
}
