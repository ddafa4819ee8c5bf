package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ssizenet/intranet-api/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"contained", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"back to back", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"back to back reversed", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.e1, tc.s2, tc.e2))
			// overlap is symmetric
			assert.Equal(t, tc.want, Overlaps(tc.s2, tc.e2, tc.s1, tc.e1))
		})
	}
}

func TestEquipmentConflict(t *testing.T) {
	cams := []model.Equipment{{Category: "카메라", Items: []string{"CAM-1", "CAM-2"}}}

	t.Run("same category same item", func(t *testing.T) {
		other := []model.Equipment{{Category: "카메라", Items: []string{"CAM-1"}}}
		assert.True(t, EquipmentConflict(cams, other))
	})
	t.Run("same category different item", func(t *testing.T) {
		other := []model.Equipment{{Category: "카메라", Items: []string{"CAM-3"}}}
		assert.False(t, EquipmentConflict(cams, other))
	})
	t.Run("same item name different category", func(t *testing.T) {
		other := []model.Equipment{{Category: "조명", Items: []string{"CAM-1"}}}
		assert.False(t, EquipmentConflict(cams, other))
	})
	t.Run("empty lists", func(t *testing.T) {
		assert.False(t, EquipmentConflict(nil, cams))
		assert.False(t, EquipmentConflict(cams, nil))
		assert.False(t, EquipmentConflict(nil, nil))
	})
}
