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

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
	"github.com/eslsoft/traitscore/internal/usecase"
)

const recomputePageSize = int32(1000)

type recomputeOptions struct {
	UserID    int64
	AttemptID int64
	Limit     int
	Force     bool
}

type recomputeSummary struct {
	Processed int
	Failed    int
}

const (
	recomputeUserKey    = "recompute.user"
	recomputeAttemptKey = "recompute.attempt"
	recomputeLimitKey   = "recompute.limit"
	recomputeForceKey   = "recompute.force"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "为缺少结果的测评尝试计算得分，或强制重算已有结果",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := recomputeOptionsFromConfig()
		if opts.AttemptID > 0 && opts.UserID <= 0 {
			return fmt.Errorf("指定 --attempt 时必须同时指定 --user")
		}

		container, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := runRecompute(cmd.Context(), container.Assessments, container.Logger, opts)
		cmd.Printf("处理完成: 共 %d 个, 失败 %d 个\n", summary.Processed, summary.Failed)
		return err
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().Int64("user", 0, "仅处理指定用户")
	recomputeCmd.Flags().Int64("attempt", 0, "仅处理指定尝试 (需同时指定 --user)")
	recomputeCmd.Flags().Int("limit", 0, "最多处理的尝试数量，0 表示使用默认值")
	recomputeCmd.Flags().Bool("force", false, "重新计算并替换已有结果")

	bindFlagToViper(recomputeUserKey, recomputeCmd.Flags().Lookup("user"))
	bindFlagToViper(recomputeAttemptKey, recomputeCmd.Flags().Lookup("attempt"))
	bindFlagToViper(recomputeLimitKey, recomputeCmd.Flags().Lookup("limit"))
	bindFlagToViper(recomputeForceKey, recomputeCmd.Flags().Lookup("force"))
}

func recomputeOptionsFromConfig() recomputeOptions {
	return recomputeOptions{
		UserID:    viper.GetInt64(recomputeUserKey),
		AttemptID: viper.GetInt64(recomputeAttemptKey),
		Limit:     viper.GetInt(recomputeLimitKey),
		Force:     viper.GetBool(recomputeForceKey),
	}
}

func runRecompute(ctx context.Context, uc usecase.AssessmentUsecase, logger logrus.FieldLogger, opts recomputeOptions) (recomputeSummary, error) {
	refs, err := recomputeTargets(ctx, uc, opts)
	if err != nil {
		return recomputeSummary{}, err
	}

	var summary recomputeSummary
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++

		calc := uc.Calculate
		if opts.Force {
			calc = uc.Recompute
		}
		result, err := calc(ctx, ref.UserID, ref.AttemptID)
		if err != nil {
			summary.Failed++
			logger.WithError(err).WithFields(logrus.Fields{
				"user_id":    ref.UserID,
				"attempt_id": ref.AttemptID,
			}).Warn("recompute attempt failed")
			continue
		}
		logger.WithFields(logrus.Fields{
			"user_id":      ref.UserID,
			"attempt_id":   ref.AttemptID,
			"type":         result.Type,
			"dec_approach": result.DecisionApproach,
		}).Debug("attempt scored")
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d 个测评尝试计算失败", summary.Failed)
	}
	return summary, nil
}

func recomputeTargets(ctx context.Context, uc usecase.AssessmentUsecase, opts recomputeOptions) ([]entity.AttemptRef, error) {
	if opts.UserID > 0 && opts.AttemptID > 0 {
		return []entity.AttemptRef{{UserID: opts.UserID, AttemptID: opts.AttemptID}}, nil
	}

	var refs []entity.AttemptRef
	if opts.Force {
		stored, err := storedAttempts(ctx, uc, opts.UserID)
		if err != nil {
			return nil, err
		}
		refs = stored
	} else {
		pending, err := uc.PendingAttempts(ctx, opts.Limit)
		if err != nil {
			return nil, fmt.Errorf("查询待计算尝试失败: %w", err)
		}
		refs = lo.Filter(pending, func(ref entity.AttemptRef, _ int) bool {
			return opts.UserID <= 0 || ref.UserID == opts.UserID
		})
	}

	refs = lo.Uniq(refs)
	if opts.Limit > 0 && len(refs) > opts.Limit {
		refs = refs[:opts.Limit]
	}
	return refs, nil
}

// storedAttempts collects every attempt that already has a result, before any of
// them is deleted, so paging is not disturbed by the recomputation itself.
func storedAttempts(ctx context.Context, uc usecase.AssessmentUsecase, userID int64) ([]entity.AttemptRef, error) {
	query := &repository.ListResultQuery{
		Pagination:  repository.Pagination{PageNo: 1, PageSize: recomputePageSize},
		FilterOrder: repository.FilterOrder{OrderBy: "id"},
	}
	if userID > 0 {
		query.Filter = fmt.Sprintf("user_id == %d", userID)
	}

	var refs []entity.AttemptRef
	for {
		items, total, err := uc.List(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("查询已有结果失败: %w", err)
		}
		refs = append(refs, lo.Map(items, func(r *entity.AssessmentResult, _ int) entity.AttemptRef {
			return r.Ref()
		})...)
		if len(items) == 0 || int64(len(refs)) >= total {
			break
		}
		query.PageNo++
	}
	return refs, nil
}
