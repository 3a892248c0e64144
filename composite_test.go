package cloner

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nodeCmp = cmp.AllowUnexported(decimal{})

// requireDisjoint 递归检查两个树之间没有共享的节点或切片底层数组
func requireDisjoint(t *testing.T, src, dst *node) {
	t.Helper()
	if src == nil {
		require.Nil(t, dst)
		return
	}
	require.NotNil(t, dst)
	require.NotSame(t, src, dst)
	require.Equal(t, src.Children == nil, dst.Children == nil)
	if len(src.Children) > 0 {
		require.NotSame(t, &src.Children[0], &dst.Children[0])
	}
	requireDisjoint(t, src.Nested, dst.Nested)
	for i := range src.Children {
		requireDisjoint(t, src.Children[i], dst.Children[i])
	}
}

func TestCompositeAllScalar(t *testing.T) {
	type account struct {
		Name    string
		Balance int64
		Rate    decimal
	}
	r := newTestRegistry()
	c, err := GetCloner[*account](r)
	require.NoError(t, err)

	src := &account{Name: "alice", Balance: 42, Rate: decimal{units: 125, scale: 3}}
	dst := c.Clone(src)
	require.NotSame(t, src, dst)
	if diff := cmp.Diff(src, dst, cmp.AllowUnexported(decimal{})); diff != "" {
		t.Fatalf("clone mismatch (-src +dst):\n%s", diff)
	}

	s := c.Strategy().(*compositeStrategy)
	assert.Equal(t, KindComposite, s.Kind())
	assert.Equal(t, 1, s.steps)
	assert.Equal(t, []string{"Name", "Balance", "Rate"}, s.Fields())
}

func TestCompositeSequenceOfNested(t *testing.T) {
	type item struct {
		SKU   string
		Count int
	}
	type basket struct {
		Owner string
		Items []*item
	}
	src := &basket{Owner: "bob"}
	for i := 0; i < 5; i++ {
		src.Items = append(src.Items, &item{SKU: "sku", Count: i})
	}
	dst, err := DeepCopyWithRegistry(newTestRegistry(), src)
	require.NoError(t, err)
	require.Len(t, dst.Items, 5)
	require.NotSame(t, &src.Items[0], &dst.Items[0])
	for i := range src.Items {
		require.NotSame(t, src.Items[i], dst.Items[i])
		require.Equal(t, *src.Items[i], *dst.Items[i])
	}
}

func TestCompositeRecursiveChain(t *testing.T) {
	r := newTestRegistry()
	c, err := GetCloner[*node](r)
	require.NoError(t, err)

	var head *node
	for i := 5; i > 0; i-- {
		head = &node{Label: "chain", Rank: i, Nested: head}
	}
	dst := c.Clone(head)

	depth := 0
	for n := dst; n != nil; n = n.Nested {
		depth++
		require.Equal(t, depth, n.Rank)
		require.Nil(t, n.Children)
	}
	require.Equal(t, 5, depth)
	requireDisjoint(t, head, dst)
}

func TestCompositeRecursiveTree(t *testing.T) {
	r := newTestRegistry()
	c, err := GetCloner[*node](r)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	b := &treeBuilder{depth: 5, breadth: 5}
	src := b.build(0)
	dst := c.Clone(src)
	if diff := cmp.Diff(src, dst, nodeCmp); diff != "" {
		t.Fatalf("clone mismatch (-src +dst):\n%s", diff)
	}
	requireDisjoint(t, src, dst)

	dst.Children[0].Label = "changed"
	dst.Children[1] = nil
	dst.Nested.Amount = decimal{}
	require.Equal(t, "node", src.Children[0].Label)
	require.NotNil(t, src.Children[1])
	require.NotEqual(t, decimal{}, src.Nested.Amount)
}

func TestCompositeAbsence(t *testing.T) {
	r := newTestRegistry()
	c, err := GetCloner[*node](r)
	require.NoError(t, err)

	require.Nil(t, c.Clone(nil))

	src := &node{
		Label:    "root",
		Children: []*node{nil, {Label: "child", Children: []*node{}}, nil},
	}
	dst := c.Clone(src)
	require.Nil(t, dst.Nested)
	require.Len(t, dst.Children, 3)
	require.Nil(t, dst.Children[0])
	require.Nil(t, dst.Children[2])
	require.Equal(t, "child", dst.Children[1].Label)
	require.NotNil(t, dst.Children[1].Children)
	require.Empty(t, dst.Children[1].Children)
}

func TestCompositeValueStruct(t *testing.T) {
	type point struct {
		X, Y int
		Tags []string
	}
	type shape struct {
		Origin point
		Path   []point
		When   time.Time
		Grid   [2][2]int
	}
	src := shape{
		Origin: point{X: 1, Y: 2, Tags: []string{"o"}},
		Path:   []point{{X: 3, Tags: []string{"a", "b"}}, {Y: 4}},
		When:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Grid:   [2][2]int{{1, 2}, {3, 4}},
	}
	dst, err := DeepCopyWithRegistry(NewRegistry(), src)
	require.NoError(t, err)
	require.True(t, reflect.DeepEqual(src, dst))
	require.NotSame(t, &src.Origin.Tags[0], &dst.Origin.Tags[0])
	require.NotSame(t, &src.Path[0], &dst.Path[0])
	require.NotSame(t, &src.Path[0].Tags[0], &dst.Path[0].Tags[0])
	require.Nil(t, dst.Path[1].Tags)
	require.True(t, src.When.Equal(dst.When))
}

func TestCompositeSteps(t *testing.T) {
	type mixed struct {
		A, B, C int64
		S       string
		D       int32
		E       bool
		Next    *mixed
		F       uint8
	}
	r := NewRegistry()
	c, err := GetCloner[mixed](r)
	require.NoError(t, err)
	s := c.Strategy().(*compositeStrategy)
	require.True(t, s.ready())
	// [A B C] S [D E] Next [F]
	require.Equal(t, 5, s.steps)

	src := mixed{A: 1, B: 2, C: 3, S: "s", D: 4, E: true, F: 5, Next: &mixed{A: 6, S: "n"}}
	dst := c.Clone(src)
	require.Equal(t, src.Next.A, dst.Next.A)
	require.NotSame(t, src.Next, dst.Next)
	dst.Next = src.Next
	require.Equal(t, src, dst)
}

func TestCompositeSkippedFieldsAreNotMerged(t *testing.T) {
	type gap struct {
		A int64
		B int64 `clone:"-"`
		C int64
	}
	c, err := GetCloner[gap](NewRegistry())
	require.NoError(t, err)
	require.Equal(t, 2, c.Strategy().(*compositeStrategy).steps)
	require.Equal(t, gap{A: 1, C: 3}, c.Clone(gap{A: 1, B: 2, C: 3}))
}

func TestCompositeTags(t *testing.T) {
	type tagged struct {
		Keep   []int
		Skip   []int          `clone:"-"`
		Meta   map[string]int `clone:"shallow,omitempty"`
		hidden []int
	}
	src := tagged{
		Keep:   []int{1},
		Skip:   []int{2},
		Meta:   map[string]int{"a": 1},
		hidden: []int{3},
	}

	dst, err := DeepCopyWithRegistry(NewRegistry(), src)
	require.NoError(t, err)
	require.Equal(t, []int{1}, dst.Keep)
	require.NotSame(t, &src.Keep[0], &dst.Keep[0])
	require.Nil(t, dst.Skip)
	require.Equal(t, reflect.ValueOf(src.Meta).Pointer(), reflect.ValueOf(dst.Meta).Pointer())
	require.Nil(t, dst.hidden)

	dst, err = DeepCopyWithRegistry(NewRegistry(WithUnexportedFields()), src)
	require.NoError(t, err)
	require.Equal(t, []int{3}, dst.hidden)
	require.NotSame(t, &src.hidden[0], &dst.hidden[0])
}

func TestCompositeTagKey(t *testing.T) {
	type tagged struct {
		A []int `deep:"-"`
		B []int `clone:"-"`
	}
	r := NewRegistry(WithTagKey("deep"))
	require.Equal(t, "deep", r.TagKey())
	dst, err := DeepCopyWithRegistry(r, tagged{A: []int{1}, B: []int{2}})
	require.NoError(t, err)
	require.Nil(t, dst.A)
	require.Equal(t, []int{2}, dst.B)
}

func TestCompositeEmbedded(t *testing.T) {
	type Base struct {
		ID   string
		Tags []string
	}
	type derived struct {
		Base
		Extra *Base
	}
	src := &derived{Base: Base{ID: "1", Tags: []string{"t"}}, Extra: &Base{ID: "2"}}
	dst, err := DeepCopyWithRegistry(NewRegistry(), src)
	require.NoError(t, err)
	require.Equal(t, src, dst)
	require.NotSame(t, &src.Tags[0], &dst.Tags[0])
	require.NotSame(t, src.Extra, dst.Extra)
}

func TestCompositeReflectiveClone(t *testing.T) {
	r := newTestRegistry()
	s, err := r.Resolve(reflect.TypeOf(node{}))
	require.NoError(t, err)

	src := &node{Label: "reflective", Children: []*node{{Label: "c"}}}
	out, ok := s.Clone(src).(*node)
	require.True(t, ok)
	require.NotSame(t, src, out)
	require.NotSame(t, src.Children[0], out.Children[0])
	require.Equal(t, "c", out.Children[0].Label)

	value, ok := s.Clone(*src).(node)
	require.True(t, ok)
	require.Equal(t, "reflective", value.Label)

	require.Nil(t, s.Clone(nil))
	require.Equal(t, (*node)(nil), s.Clone((*node)(nil)))
	require.Panics(t, func() { s.Clone(42) })
}
