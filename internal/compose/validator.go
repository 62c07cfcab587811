package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/tangpeiwen/clipsync/internal/ports"
)

// requiredProperties is the property shape every destination database must
// expose before a page can be composed into it. Order fixes the order of
// names in mismatch messages.
var requiredProperties = []struct {
	Name string
	Type string
}{
	{"Name", "title"},
	{"Title/Content", "rich_text"},
	{"Source", "select"},
	{"Category", "select"},
	{"Tag", "multi_select"},
	{"URL", "url"},
}

// VerifySchema checks the destination database against the required property
// shape. A mismatch aborts the publish attempt before anything is composed;
// the returned error lists every missing property and type mismatch.
func VerifySchema(ctx context.Context, store ports.DocumentStore, databaseID string) error {
	schema, err := store.DatabaseSchema(ctx, databaseID)
	if err != nil {
		return fmt.Errorf("无法获取数据库信息: %w", err)
	}

	var missing []string
	var wrongTypes []string
	for _, prop := range requiredProperties {
		actual, ok := schema[prop.Name]
		if !ok {
			missing = append(missing, prop.Name)
			continue
		}
		if actual != prop.Type {
			wrongTypes = append(wrongTypes, fmt.Sprintf("%s (应为 %s, 实际为 %s)", prop.Name, prop.Type, actual))
		}
	}

	if len(missing) == 0 && len(wrongTypes) == 0 {
		return nil
	}

	var message []string
	if len(missing) > 0 {
		message = append(message, fmt.Sprintf("缺少属性: %s.", strings.Join(missing, ", ")))
	}
	if len(wrongTypes) > 0 {
		message = append(message, fmt.Sprintf("属性类型错误: %s.", strings.Join(wrongTypes, ", ")))
	}

	return fmt.Errorf("%s", strings.Join(message, " "))
}
