package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategory(t *testing.T, name string, parentID *uuid.UUID) Category {
	t.Helper()
	c, err := NewCategory(name, "", parentID, uuid.New(), time.Now())
	require.NoError(t, err)
	return c
}

func TestNewCategory(t *testing.T) {
	c := testCategory(t, "Organic Foods", nil)

	assert.Equal(t, "Organic Foods", c.Name())
	assert.Equal(t, "organic-foods", c.Slug())
	assert.True(t, c.IsRoot())
	assert.Nil(t, c.ParentID())

	parent := c.ID()
	child := testCategory(t, "Fresh Produce", &parent)
	assert.True(t, child.HasParent())
	assert.Equal(t, c.ID(), *child.ParentID())
}

func TestNewCategoryValidation(t *testing.T) {
	actor := uuid.New()
	now := time.Now()

	_, err := NewCategory("", "", nil, actor, now)
	assert.True(t, IsValidation(err))

	// a name of only special characters slugifies to nothing
	_, err = NewCategory("!!!", "", nil, actor, now)
	assert.True(t, IsValidation(err))
}

func TestCategoryUpdateNameReDerivesSlug(t *testing.T) {
	c := testCategory(t, "Organic Foods", nil)

	renamed, err := c.UpdateName("Zero Waste Kitchen", uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "zero-waste-kitchen", renamed.Slug())
	// the original is untouched
	assert.Equal(t, "organic-foods", c.Slug())
}

func TestCategoryParentIDDoesNotAliasCallerPointer(t *testing.T) {
	root := testCategory(t, "Home", nil)
	parentID := root.ID()

	child := testCategory(t, "Kitchen", &parentID)

	// mutating the caller's pointer after construction must not move
	// the child under a different parent
	parentID = uuid.New()
	assert.Equal(t, root.ID(), *child.ParentID())

	moved, err := child.ChangeParent(&parentID, uuid.New(), time.Now())
	require.NoError(t, err)
	parentID = uuid.New()
	assert.NotEqual(t, parentID, *moved.ParentID())
}

func TestCategoryChangeParentRejectsSelf(t *testing.T) {
	c := testCategory(t, "Organic Foods", nil)

	self := c.ID()
	_, err := c.ChangeParent(&self, uuid.New(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSelfParent))
}

func TestBuildCategoryTree(t *testing.T) {
	root := testCategory(t, "Home", nil)
	rootID := root.ID()
	kitchen := testCategory(t, "Kitchen", &rootID)
	kitchenID := kitchen.ID()
	utensils := testCategory(t, "Utensils", &kitchenID)
	garden := testCategory(t, "Garden", &rootID)
	other := testCategory(t, "Other Root", nil)

	tree := BuildCategoryTree([]Category{utensils, garden, kitchen, root, other})

	require.Len(t, tree, 2)
	byName := map[string]*CategoryNode{}
	for _, n := range tree {
		byName[n.Category.Name()] = n
	}

	home := byName["Home"]
	require.NotNil(t, home)
	require.Len(t, home.Children, 2)

	var kitchenNode *CategoryNode
	for _, child := range home.Children {
		if child.Category.Name() == "Kitchen" {
			kitchenNode = child
		}
	}
	require.NotNil(t, kitchenNode)
	require.Len(t, kitchenNode.Children, 1)
	assert.Equal(t, "Utensils", kitchenNode.Children[0].Category.Name())

	assert.Empty(t, byName["Other Root"].Children)
}

func TestBuildCategoryTreeDropsOrphans(t *testing.T) {
	missing := uuid.New()
	orphan := testCategory(t, "Orphan", &missing)
	root := testCategory(t, "Root", nil)

	tree := BuildCategoryTree([]Category{orphan, root})
	require.Len(t, tree, 1)
	assert.Equal(t, "Root", tree[0].Category.Name())
}

func TestDetectParentCycle(t *testing.T) {
	root := testCategory(t, "Root", nil)
	rootID := root.ID()
	mid := testCategory(t, "Mid", &rootID)
	midID := mid.ID()
	leaf := testCategory(t, "Leaf", &midID)
	all := []Category{root, mid, leaf}

	// moving a category under its own descendant is a cycle
	assert.True(t, DetectParentCycle(root.ID(), leaf.ID(), all))
	assert.True(t, DetectParentCycle(mid.ID(), leaf.ID(), all))

	// moving a leaf under the root is fine
	assert.False(t, DetectParentCycle(leaf.ID(), root.ID(), all))

	// re-parenting under an unrelated root is fine
	other := testCategory(t, "Other", nil)
	assert.False(t, DetectParentCycle(leaf.ID(), other.ID(), append(all, other)))
}
