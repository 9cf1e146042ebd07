package booking

// Total is the room tally: the sum of all ten counters.  It drives both the
// "Total: N rooms" label and the at-least-one-room rule.
func (r Rooms) Total() int {
	return r.SingleOccupancy + r.DoubleOccupancy + r.TwinRooms +
		r.FamilyOf21A1C + r.FamilyOf32A1C + r.FamilyOf31A2C + r.FamilyOf42A2C +
		r.AccessibleSingle + r.AccessibleDouble + r.AccessibleTwin
}

// TallyValues sums the counters in a store-shaped rooms map.  Non-numeric
// entries count as zero, so a half-edited form still yields a total.
func TallyValues(rooms map[string]any) int {
	total := 0
	for _, p := range roomPaths {
		if n, ok := AsInt(rooms[p.Leaf()]); ok {
			total += n
		}
	}
	return total
}

// AsInt converts the numeric kinds a store or JSON decoder may hold.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	default:
		return 0, false
	}
}
