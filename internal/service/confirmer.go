package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"go.uber.org/zap"
)

// LLMConfirmer asks a language model whether two values of a dynamic slot
// really contradict each other, e.g. "team_size: 5" vs "team_size: five".
type LLMConfirmer struct {
	llm    domain.LLMClient
	logger *zap.Logger
}

func NewLLMConfirmer(lc domain.LLMClient, logger *zap.Logger) *LLMConfirmer {
	return &LLMConfirmer{llm: lc, logger: logger}
}

func (c *LLMConfirmer) Check(ctx context.Context, a, b, slot string) (bool, error) {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return false, nil
	}
	stmtA, stmtB := slotStatement(slot, a), slotStatement(slot, b)
	contradicts, err := c.llm.CheckContradiction(ctx, stmtA, stmtB)
	if err != nil {
		return false, fmt.Errorf("confirm contradiction: %w", err)
	}
	c.logger.Debug("contradiction confirmed by llm",
		zap.String("slot", slot),
		zap.String("a", a),
		zap.String("b", b),
		zap.Bool("contradicts", contradicts))
	return contradicts, nil
}

func slotStatement(slot, value string) string {
	if slot == "" {
		return value
	}
	return fmt.Sprintf("The user's %s is %s.", strings.ReplaceAll(slot, "_", " "), value)
}
