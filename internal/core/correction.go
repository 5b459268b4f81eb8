package core

import "strings"

// Correction semantics: a ledger or statement correction replaces, inside a
// single document, exactly the records whose reference-carrying field
// contains the alert's ref. Retained records keep their order, replacement
// records are appended after them, and every other document key passes
// through untouched. Applying the same correction twice yields the same
// document as applying it once, provided the replacement records carry the
// ref themselves.

// ApplyGLCorrection rewrites the ecritures_comptables list of a ledger
// document tree. A tree without the list is returned as a copy with the
// replacement records as its new list.
func ApplyGLCorrection(content map[string]any, ref string, replacement []map[string]any) map[string]any {
	return replaceMatching(content, "ecritures_comptables", ref, labelAliases, replacement)
}

// ApplyRLCorrection rewrites the operations list of a statement document
// tree, partitioning on the nature field.
func ApplyRLCorrection(content map[string]any, ref string, replacement []map[string]any) map[string]any {
	return replaceMatching(content, "operations", ref, natureAliases, replacement)
}

// ApplySourceCorrection shallow-merges new key/values into a source
// document tree. Keys absent from the new content keep their values.
func ApplySourceCorrection(content, newContent map[string]any) map[string]any {
	out := make(map[string]any, len(content)+len(newContent))
	for k, v := range content {
		out[k] = v
	}
	for k, v := range newContent {
		out[k] = v
	}
	return out
}

func replaceMatching(content map[string]any, listKey, ref string, aliases []string, replacement []map[string]any) map[string]any {
	out := make(map[string]any, len(content))
	for k, v := range content {
		out[k] = v
	}

	rawList, _ := content[listKey].([]any)
	kept := make([]any, 0, len(rawList)+len(replacement))
	for _, item := range rawList {
		record, ok := item.(map[string]any)
		if !ok {
			kept = append(kept, item)
			continue
		}
		if strings.Contains(probeString(record, aliases), ref) {
			continue
		}
		kept = append(kept, item)
	}
	for _, record := range replacement {
		kept = append(kept, record)
	}

	out[listKey] = kept
	return out
}
