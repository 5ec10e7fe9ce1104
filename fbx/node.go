package fbx

import (
	"fmt"
	"io"
	"strings"

	"github.com/binzume/lmoconv/geom"
)

type Node struct {
	Name       string
	Attributes AttributeList
	Children   []*Node
}

type Attribute struct {
	Value     interface{}
	ArraySize uint
}

type AttributeList []*Attribute

func (l AttributeList) Get(i int) *Attribute {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) FindChildren(name string) []*Node {
	var r []*Node
	for _, c := range n.GetChildren() {
		if c.Name == name {
			r = append(r, c)
		}
	}
	return r
}

func (n *Node) GetChildren() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func (n *Node) Attr(i int) *Attribute {
	if n == nil {
		return nil
	}
	return n.Attributes.Get(i)
}

func (n *Node) GetString() string {
	return n.Attr(0).ToString()
}

func (n *Node) GetInt64() int64 {
	return n.Attr(0).ToInt64(0)
}

func (n *Node) GetInt32Array() []int32 {
	return n.Attr(0).ToInt32Array()
}

func (n *Node) GetInt64Array() []int64 {
	return n.Attr(0).ToInt64Array()
}

func (n *Node) GetFloat64Array() []float64 {
	return n.Attr(0).ToFloat64Array()
}

func (n *Node) GetVec3Array() []*geom.Vector3 {
	a := n.GetFloat64Array()
	vv := make([]*geom.Vector3, 0, len(a)/3)
	for i := 0; i+2 < len(a); i += 3 {
		vv = append(vv, geom.NewVector3FromFloat64(a[i], a[i+1], a[i+2]))
	}
	return vv
}

func (a *Attribute) ToInt(defvalue int) int {
	return int(a.ToInt64(int64(defvalue)))
}

func (a *Attribute) ToInt64(defvalue int64) int64 {
	if a == nil {
		return defvalue
	}
	switch v := a.Value.(type) {
	case byte:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return defvalue
}

func (a *Attribute) ToFloat64(defvalue float64) float64 {
	if a == nil {
		return defvalue
	}
	switch v := a.Value.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return defvalue
}

func (a *Attribute) ToFloat32(defvalue float32) float32 {
	return float32(a.ToFloat64(float64(defvalue)))
}

func (a *Attribute) ToString() string {
	if a == nil {
		return ""
	}
	if v, ok := a.Value.(string); ok {
		return v
	} else if v, ok := a.Value.([]byte); ok {
		return string(v)
	}
	return ""
}

func (a *Attribute) ToInt32Array() []int32 {
	if a == nil {
		return nil
	}
	switch vv := a.Value.(type) {
	case []int32:
		return vv
	case []int64:
		r := make([]int32, len(vv))
		for i, v := range vv {
			r[i] = int32(v)
		}
		return r
	case []byte:
		r := make([]int32, len(vv))
		for i, v := range vv {
			r[i] = int32(v)
		}
		return r
	}
	return nil
}

func (a *Attribute) ToInt64Array() []int64 {
	if a == nil {
		return nil
	}
	switch vv := a.Value.(type) {
	case []int64:
		return vv
	case []int32:
		r := make([]int64, len(vv))
		for i, v := range vv {
			r[i] = int64(v)
		}
		return r
	}
	return nil
}

func (a *Attribute) ToFloat64Array() []float64 {
	if a == nil {
		return nil
	}
	switch vv := a.Value.(type) {
	case []float64:
		return vv
	case []float32:
		r := make([]float64, len(vv))
		for i, v := range vv {
			r[i] = float64(v)
		}
		return r
	case []int32:
		r := make([]float64, len(vv))
		for i, v := range vv {
			r[i] = float64(v)
		}
		return r
	case []int64:
		r := make([]float64, len(vv))
		for i, v := range vv {
			r[i] = float64(v)
		}
		return r
	}
	return nil
}

func (a *Attribute) String() string {
	switch v := a.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("\"%v\"", v)
	default:
		return fmt.Sprint(v)
	}
}

// Dump writes the node tree in a text form close to ASCII FBX.
func (n *Node) Dump(w io.Writer, d int, full bool) {
	fmt.Fprint(w, strings.Repeat("  ", d), n.Name, ":")
	var arrayReplacer = strings.NewReplacer("[", "{ a:", "]", "}", " ", ", ")
	for i, a := range n.Attributes {
		sep := ", "
		if i == 0 {
			sep = " "
		}
		if !full && a.ArraySize > 16 {
			fmt.Fprintf(w, "%s*%d { SKIPPED }", sep, a.ArraySize)
			continue
		}
		s := a.String()
		if a.ArraySize > 0 {
			s = fmt.Sprint("*", a.ArraySize, " ", arrayReplacer.Replace(s))
		}
		fmt.Fprint(w, sep, s)
	}
	if len(n.Children) > 0 || len(n.Attributes) == 0 {
		fmt.Fprintln(w, " {")
		for _, c := range n.Children {
			c.Dump(w, d+1, full)
		}
		fmt.Fprintln(w, strings.Repeat("  ", d)+"}")
	} else {
		fmt.Fprintln(w, "")
	}
}
