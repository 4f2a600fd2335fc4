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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/usecase"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "管理权重表版本",
}

var weightsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "从 JSON 文件发布新的权重表版本",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		global, _ := cmd.Flags().GetBool("global")
		if file == "" {
			return fmt.Errorf("请通过 --file 指定权重文件")
		}

		container, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		created, err := publishWeightsFile(cmd.Context(), container.Weights, file, global)
		if err != nil {
			return err
		}
		cmd.Printf("发布完成: 版本 %d (global=%t)\n", created.Version, created.IsGlobal)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weightsCmd)
	weightsCmd.AddCommand(weightsImportCmd)

	weightsImportCmd.Flags().StringP("file", "f", "", "权重表 JSON 文件路径")
	weightsImportCmd.Flags().Bool("global", true, "发布为全局版本")
}

func publishWeightsFile(ctx context.Context, weights usecase.WeightUsecase, path string, global bool) (*entity.Algorithm, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("打开权重文件失败: %w", err)
	}
	defer f.Close()

	algorithm, err := decodeAlgorithm(f)
	if err != nil {
		return nil, err
	}
	algorithm.IsGlobal = global

	created, err := weights.Publish(ctx, algorithm)
	if err != nil {
		return nil, fmt.Errorf("发布权重表失败: %w", err)
	}
	return created, nil
}

// decodeAlgorithm reads a weight file shaped like the stored algorithm row. The
// version is ignored; publishing always assigns the next one.
func decodeAlgorithm(r io.Reader) (*entity.Algorithm, error) {
	var algorithm entity.Algorithm
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&algorithm); err != nil {
		return nil, fmt.Errorf("解析权重文件失败: %w", err)
	}
	algorithm.ID = 0
	algorithm.Version = 0
	return &algorithm, nil
}
