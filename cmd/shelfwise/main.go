// Copyright 2025 shelfwise Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfwise/shelfwise/base/log"
	"github.com/shelfwise/shelfwise/config"
	"github.com/shelfwise/shelfwise/logics"
	"github.com/shelfwise/shelfwise/storage/data"
)

var version = "0.1.0"

// snapshotFile is the JSON layout consumed by the recommend command.
type snapshotFile struct {
	Items    []data.Item     `json:"items"`
	Users    []data.User     `json:"users"`
	Feedback []data.Feedback `json:"feedback"`
}

var rootCmd = &cobra.Command{
	Use:   "shelfwise",
	Short: "shelfwise: hybrid book recommendation engine",
	Long: "shelfwise blends content similarity and collaborative latent " +
		"factors to recommend books, falling back to popularity for cold-start readers.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Check the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend USER_ID",
	Short: "Recommend books for a user from a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		configPath, _ := cmd.Flags().GetString("config")
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			return errors.Trace(err)
		}
		snapshotPath, _ := cmd.Flags().GetString("snapshot")
		database, err := loadSnapshot(cmd.Context(), snapshotPath)
		if err != nil {
			return errors.Trace(err)
		}
		engine, err := logics.NewEngine(conf, database)
		if err != nil {
			return errors.Trace(err)
		}
		defer engine.Close()
		n, _ := cmd.Flags().GetInt("n")
		var results []logics.Result
		if n > 0 {
			results, err = engine.RecommendN(cmd.Context(), args[0], n)
		} else {
			results, err = engine.Recommend(cmd.Context(), args[0])
		}
		if err != nil {
			return errors.Trace(err)
		}
		printResults(database, results)
		return nil
	},
}

func loadSnapshot(ctx context.Context, path string) (data.Database, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var snapshot snapshotFile
	if err = json.Unmarshal(raw, &snapshot); err != nil {
		return nil, errors.Trace(err)
	}
	database := data.NewMemoryDatabase()
	if err = database.BatchInsertItems(ctx, snapshot.Items); err != nil {
		return nil, errors.Trace(err)
	}
	for _, user := range snapshot.Users {
		if err = database.PutUser(ctx, user); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err = database.InsertFeedback(ctx, snapshot.Feedback); err != nil {
		return nil, errors.Trace(err)
	}
	return database, nil
}

func printResults(database data.Database, results []logics.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Item", "Title", "Score", "Reason")
	for _, result := range results {
		title := ""
		if item, err := database.GetItem(context.Background(), result.ItemId); err == nil {
			title = item.Title
		}
		_ = table.Append([]string{
			strconv.Itoa(result.Rank),
			result.ItemId,
			title,
			strconv.FormatFloat(result.Score, 'f', 4, 64),
			result.Reason,
		})
	}
	_ = table.Render()
}

func init() {
	recommendCmd.Flags().String("config", "", "path of config file")
	recommendCmd.Flags().String("snapshot", "snapshot.json", "path of JSON snapshot file")
	recommendCmd.Flags().Int("n", 0, "number of recommendations (0 uses the configured default)")
	recommendCmd.Flags().Bool("debug", false, "use debug log mode")
	log.AddFlags(recommendCmd.Flags())
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(recommendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
