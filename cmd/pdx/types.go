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
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/apache/geode-native/pdx"
)

func newTypesCommand(g *globalFlags, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List and show stored PDX types",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every type in the store",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			store, err := openStore(g)
			if err != nil {
				return err
			}
			defer store.Close()
			types, err := store.Types()
			if err != nil {
				return err
			}
			writeTypeList(stdout, types)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show the fields of one type",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return errors.Wrapf(err, "parsing type id %q", args[0])
			}
			store, err := openStore(g)
			if err != nil {
				return err
			}
			defer store.Close()
			t, err := store.TypeByID(int32(id))
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s (typeId=%d)\n", t.ClassName(), t.TypeID())
			writeFieldTable(stdout, t)
			return nil
		},
	})
	return cmd
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	return t
}

func writeTypeList(w io.Writer, types []*pdx.PdxType) {
	t := newTable(w)
	t.AppendHeader(table.Row{"typeId", "className", "fields", "identity"})
	for _, pt := range types {
		identity := "-"
		if pt.HasIdentityFields() {
			var names []string
			for _, f := range pt.IdentityFields() {
				names = append(names, f.Name)
			}
			identity = strings.Join(names, ",")
		}
		t.AppendRow(table.Row{pt.TypeID(), pt.ClassName(), pt.NumFields(), identity})
	}
	t.Render()
}

func writeFieldTable(w io.Writer, pt *pdx.PdxType) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "name", "kind", "varId", "offset", "identity"})
	for _, f := range pt.Fields() {
		t.AppendRow(table.Row{f.SequenceID, f.Name, f.Kind.String(), f.VarID, f.RelativeOffset, f.Identity})
	}
	t.Render()
}
