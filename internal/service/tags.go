package service

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/model"
	"FieldScribe/internal/repo"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxTagLength = 50

// NormalizeTags обрезает пробелы, выбрасывает пустые имена и дубликаты
// (остаётся первое вхождение). Сравнение точное, с учётом регистра.
func NormalizeTags(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > maxTagLength {
			return nil, errs.Validation("tags", fmt.Sprintf("tag %q is longer than %d characters", name, maxTagLength))
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// SplitTags разбирает строку вида "work, draft" в список имён.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// DiffTags возвращает имена, которые надо добавить и отвязать.
// Пересечение не трогается.
func DiffTags(current, desired []string) (add, remove []string) {
	cur := make(map[string]struct{}, len(current))
	for _, n := range current {
		cur[n] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	for _, n := range desired {
		want[n] = struct{}{}
		if _, ok := cur[n]; !ok {
			add = append(add, n)
		}
	}
	for _, n := range current {
		if _, ok := want[n]; !ok {
			remove = append(remove, n)
		}
	}
	return add, remove
}

// reconcileTags приводит набор тегов записи к desired внутри транзакции.
// Теги, которые больше не нужны, только отвязываются, строки тегов остаются.
func reconcileTags(ctx context.Context, tx repo.Store, entryID int64, current []model.Tag, desired []string) error {
	byName := make(map[string]int64, len(current))
	names := make([]string, 0, len(current))
	for _, t := range current {
		byName[t.Name] = t.ID
		names = append(names, t.Name)
	}
	add, remove := DiffTags(names, desired)

	for _, name := range add {
		tag, err := tx.Tags().FindByName(ctx, name)
		if repo.IsNotFound(err) {
			tag, err = tx.Tags().Create(ctx, name)
		}
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}
		if err := tx.Entries().AttachTag(ctx, entryID, tag.ID); err != nil {
			return err
		}
	}
	for _, name := range remove {
		if err := tx.Entries().DetachTag(ctx, entryID, byName[name]); err != nil {
			return err
		}
	}
	return nil
}
