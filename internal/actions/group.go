package actions

import "path/filepath"

// normalizeKeep returns keep, or 0 when keep is out of range.
func normalizeKeep(group []string, keep int) int {
	if keep < 0 || keep >= len(group) {
		return 0
	}
	return keep
}

// DeleteKeepOne deletes every file of group except the one at keep and
// returns the number deleted. The index is updated and persisted.
// A keep index out of range means 0.
func (a *Actions) DeleteKeepOne(group []string, keep int) int {
	if len(group) == 0 {
		return 0
	}
	keep = normalizeKeep(group, keep)

	deleted := 0
	for i, path := range group {
		if i == keep {
			continue
		}
		if err := a.delete(path, true); err != nil {
			a.logger.Warn("failed to delete duplicate", "path", path, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		a.persist()
	}
	return deleted
}

// MoveGroupToFolder moves every file of group except the one at keep into
// target and returns the number moved. Name collisions in target get a
// numeric suffix. The index is updated and persisted.
// A keep index out of range means 0.
func (a *Actions) MoveGroupToFolder(group []string, target string, keep int) int {
	if len(group) == 0 {
		return 0
	}
	keep = normalizeKeep(group, keep)

	moved := 0
	for i, path := range group {
		if i == keep {
			continue
		}
		dst := a.FreeName(target, filepath.Base(path))
		if err := a.move(path, dst, true); err != nil {
			a.logger.Warn("failed to move duplicate", "path", path, "target", target, "error", err)
			continue
		}
		moved++
	}
	if moved > 0 {
		a.persist()
	}
	return moved
}

// LinkGroupToKeeper replaces every file of group except the one at keep with
// a hard link to it and returns the number replaced. Files that already are
// links to the keeper are not counted. The paths stay in the index since
// their content is unchanged.
// A keep index out of range means 0.
func (a *Actions) LinkGroupToKeeper(group []string, keep int) int {
	if len(group) == 0 {
		return 0
	}
	keep = normalizeKeep(group, keep)
	keeper := group[keep]

	linked := 0
	for i, path := range group {
		if i == keep {
			continue
		}
		replaced, err := a.link(keeper, path)
		if err != nil {
			a.logger.Warn("failed to link duplicate", "path", path, "keeper", keeper, "error", err)
			continue
		}
		if replaced {
			linked++
		}
	}
	return linked
}
