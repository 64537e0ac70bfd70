package activation

// IsDuplicate reports whether candidate's natural key already exists in
// existing. Both SN ONT and NIK ONT must match (case-insensitive); a match on
// one half only is not a duplicate. A candidate with an incomplete key never
// matches.
func IsDuplicate(existing []Record, candidate Draft) bool {
	key := candidate.Key()
	if key.Empty() {
		return false
	}
	for _, r := range existing {
		if r.Key() == key {
			return true
		}
	}
	return false
}

// Dedupe rebuilds raw table rows keeping the header row and the first
// occurrence of every complete natural key, in original order. Later
// occurrences and rows missing either key field are dropped.
func Dedupe(rows [][]string) ([][]string, int) {
	if len(rows) == 0 {
		return nil, 0
	}

	kept := make([][]string, 0, len(rows))
	kept = append(kept, rows[0])

	seen := make(map[Key]struct{}, len(rows))
	dropped := 0
	for _, row := range rows[1:] {
		key := RecordFromRow(row).Key()
		if key.Empty() {
			dropped++
			continue
		}
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	return kept, dropped
}
