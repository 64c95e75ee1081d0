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
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/apache/geode-native/pdx/typestore"
)

const envPrefix = "PDX"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	Store    string
	LogLevel string
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	rc := &cobra.Command{
		Use:   "pdx",
		Short: "Inspect PDX type stores and payloads.",
		Long: `Inspect PDX type stores and payloads.

Type definitions are read from a bbolt type store (--store), the same
file a pdx cache writes through typestore.Store. Every flag can also be
set through a PDX_ environment variable or a configuration file.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := setAllConfig(v, cmd.Flags()); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(g.LogLevel)
			if err != nil {
				return errors.Wrap(err, "parsing log level")
			}
			logrus.SetLevel(level)
			logrus.SetOutput(stderr)
			return nil
		},
	}
	flags := rc.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file to read from.")
	flags.StringVarP(&g.Store, "store", "s", "pdx-types.db", "Path of the bbolt type store.")
	flags.StringVar(&g.LogLevel, "log-level", "warning", "Log level.")

	rc.AddCommand(newTypesCommand(g, stdout))
	rc.AddCommand(newDumpCommand(g, stdin, stdout))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig fills every flag not given on the command line from the
// environment or the configuration file, in that order.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading configuration file '%s'", c)
		}
		valid := make(map[string]bool)
		flags.VisitAll(func(f *pflag.Flag) {
			valid[f.Name] = true
		})
		for _, key := range v.AllKeys() {
			if !valid[key] {
				return errors.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if v.IsSet(f.Name) {
			flagErr = f.Value.Set(v.GetString(f.Name))
		}
	})
	return flagErr
}

func openStore(g *globalFlags) (*typestore.Store, error) {
	return typestore.Open(g.Store)
}
