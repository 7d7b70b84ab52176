// Package main implements keybctl, a small CLI over the keyb session
// manager: load a layout, switch layouts, replay a translate call, and
// query what is currently active. One Session lives for the process
// lifetime, built once in PersistentPreRun from merged flag/config state.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/retrocore-labs/dioskeyb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var session *keyb.Session

var rootCmd = &cobra.Command{
	Use:   "keybctl",
	Short: "inspect and drive a DOS keyboard-layout/code-page session",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resourceDirs := viper.GetStringSlice("resource-dirs")
		var files keyb.ResourceSource
		if len(resourceDirs) > 0 {
			files = &keyb.Fileset{Dirs: resourceDirs}
		}
		session = keyb.NewSession(files, nil, nil, nil, keyb.NewGoLogger("keybctl"))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: $HOME/.keybctl.yaml)")
	rootCmd.PersistentFlags().StringSlice("resource-dirs", nil, "directories searched for .KL/.KCL/.CPI/.CPX files before the built-in blobs")
	viper.BindPFlag("resource-dirs", rootCmd.PersistentFlags().Lookup("resource-dirs"))

	loadCmd.Flags().String("codepage-file", "", "explicit .CPI/.CPX file name (default: \"auto\", resolved from the built-in bucket table)")

	rootCmd.AddCommand(loadCmd, switchCmd, translateCmd, queryCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".keybctl")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("KEYBCTL")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of a config file is not an error
}

var loadCmd = &cobra.Command{
	Use:   "load <layout> <codepage>",
	Short: "load a layout and code page, replacing whatever is active",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("codepage must be numeric: %w", err)
		}
		cpFile, _ := cmd.Flags().GetString("codepage-file")
		if err := session.Load(args[0], cp, cpFile); err != nil {
			return err
		}
		fmt.Printf("loaded %s, codepage %d\n", session.QueryName(), session.CodePage())
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <layout>",
	Short: "switch to a layout id, auto-detecting the host layout on \"auto\"",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "auto" {
			detected, err := detectHostLayout()
			if err != nil {
				return fmt.Errorf("keybctl: auto-detecting host layout: %w", err)
			}
			name = detected
		}
		triedCP, err := session.Switch(name)
		if err != nil {
			return fmt.Errorf("switch to %q (tried codepage %d): %w", name, triedCP, err)
		}
		fmt.Printf("switched to %s, codepage %d\n", session.QueryName(), session.CodePage())
		return nil
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <scan> <flags1> <flags2> <flags3>",
	Short: "replay one translate_key call against the active layout",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		vals := make([]uint64, 4)
		for i, a := range args {
			v, err := strconv.ParseUint(strings.TrimPrefix(a, "0x"), 16, 8)
			if err != nil {
				return fmt.Errorf("argument %d must be hex: %w", i, err)
			}
			vals[i] = v
		}
		word, emit, handled := session.Translate(int(vals[0]), uint8(vals[1]), uint8(vals[2]), uint8(vals[3]))
		fmt.Printf("handled=%v emit=%v word=%#04x\n", handled, emit, word)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "print the active layout name, main language code, and code page",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := session.QueryName()
		if name == "" {
			name = "none"
		}
		fmt.Printf("layout=%s language=%s codepage=%d\n", name, session.MainLanguageCode(), session.CodePage())
		return nil
	},
}

// detectHostLayout shells out to setxkbmap, the consumer side of spec's
// out-of-scope "host-OS layout auto-detection" collaborator. Best effort
// only: any failure just surfaces as an error to the caller of "switch
// auto", never a panic.
func detectHostLayout() (string, error) {
	out, err := exec.Command("setxkbmap", "-query").Output()
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "layout:") {
			fields := strings.Fields(line)
			if len(fields) == 2 {
				return fields[1], nil
			}
		}
	}
	return "", fmt.Errorf("no layout: line in setxkbmap -query output")
}
