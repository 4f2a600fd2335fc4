/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/traitscore/internal/infrastructure/database"
)

// dbInitCmd creates the schema and optionally seeds the first weight version.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "初始化数据库表结构并可选导入权重表",
	RunE: func(cmd *cobra.Command, args []string) error {
		weightsFile, _ := cmd.Flags().GetString("weights")

		container, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if err := database.Migrate(ctx, container.Driver); err != nil {
			return fmt.Errorf("执行数据库迁移失败: %w", err)
		}
		container.Logger.Info("database schema created")

		if weightsFile == "" {
			cmd.Println("初始化完成")
			return nil
		}
		created, err := publishWeightsFile(ctx, container.Weights, weightsFile, true)
		if err != nil {
			return err
		}
		cmd.Printf("初始化完成: 已发布权重版本 %d\n", created.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)

	dbInitCmd.Flags().String("weights", "", "初始权重表 JSON 文件路径")
}
