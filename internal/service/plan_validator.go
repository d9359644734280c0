package service

import (
	"strings"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

// PlanValidator 按套餐档位校验所选菜品
type PlanValidator struct{}

func NewPlanValidator() *PlanValidator {
	return &PlanValidator{}
}

// Normalize 去掉首尾空白和空项，拒绝重复菜品（忽略大小写）和带逗号的菜名
func (v *PlanValidator) Normalize(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if err := checkItemLabel(it); err != nil {
			return nil, err
		}
		key := strings.ToLower(it)
		if seen[key] {
			return nil, invalidSelection("duplicate item %q", it)
		}
		seen[key] = true
		out = append(out, it)
	}
	return out, nil
}

// Validate 档位规则：
// 未分档 1~2 个；basic 恰好 1 个；premium 恰好 2 个，一个卷饼 (roll)，另一个米饭或碗 (rice/bowl)
func (v *PlanValidator) Validate(plan string, items []string) error {
	items, err := v.Normalize(items)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return invalidSelection("at least one item is required")
	}

	switch plan {
	case model.PlanNone:
		if len(items) > 2 {
			return invalidSelection("at most 2 items allowed, got %d", len(items))
		}
	case model.PlanBasic:
		if len(items) != 1 {
			return invalidSelection("basic plan allows exactly 1 item, got %d", len(items))
		}
	case model.PlanPremium:
		if len(items) != 2 {
			return invalidSelection("premium plan requires exactly 2 items, got %d", len(items))
		}
		a, b := items[0], items[1]
		if !(isRoll(a) && isRiceOrBowl(b)) && !(isRoll(b) && isRiceOrBowl(a)) {
			return invalidSelection("premium plan requires one roll and one rice or bowl")
		}
	default:
		return invalidSelection("unknown plan %q", plan)
	}
	return nil
}

// checkItemLabel 登记里的菜品以逗号拼接保存，菜名本身不能带逗号
func checkItemLabel(item string) error {
	if strings.Contains(item, ",") {
		return invalidSelection("item %q must not contain a comma", item)
	}
	return nil
}

func isRoll(item string) bool {
	return strings.Contains(strings.ToLower(item), "roll")
}

func isRiceOrBowl(item string) bool {
	s := strings.ToLower(item)
	return strings.Contains(s, "rice") || strings.Contains(s, "bowl")
}
