package lookup

// Merge folds cleaned trees from several sources into one consolidated
// object. For a key seen once the value is kept as-is; when sources
// agree the common value is kept; when they diverge the value becomes
// a list of the distinct values in first-seen order. Nested objects on
// both sides are merged recursively. Inputs that are not objects are
// ignored. Values are cloned on insertion, so the inputs are never
// mutated.
func Merge(trees []any) any {
	out := NewObject()
	for _, t := range trees {
		obj, ok := t.(*Object)
		if !ok || obj.Len() == 0 {
			continue
		}
		mergeInto(out, obj)
	}
	if out.Len() == 0 {
		return nil
	}
	return out
}

func mergeInto(dst, src *Object) {
	for _, k := range src.Keys() {
		// inputs are expected to be cleaned already; skipping noise
		// keys here is defense in depth
		if isNoiseKey(k) {
			continue
		}
		v, _ := src.Get(k)
		existing, ok := dst.Get(k)
		if !ok {
			dst.Set(k, Clone(v))
			continue
		}
		if Equal(existing, v) {
			continue
		}
		if eo, isObj := existing.(*Object); isObj {
			if vo, isObj2 := v.(*Object); isObj2 {
				mergeInto(eo, vo)
				continue
			}
		}
		list, isList := existing.([]any)
		if !isList {
			list = []any{existing}
		}
		for _, cand := range flattenValue(v) {
			if containsEqual(list, cand) {
				continue
			}
			list = append(list, Clone(cand))
		}
		dst.Set(k, list)
	}
}

// flattenValue exposes a sequence's elements so that merging a list
// into an existing value appends its distinct members individually.
func flattenValue(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}
