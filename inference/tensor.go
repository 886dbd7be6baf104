package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Tensor 模型输入输出的稠密数组，按行优先存储
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

func NewTensor(shape []int, data []float32) *Tensor {
	return &Tensor{Shape: shape, Data: data}
}

func (t *Tensor) Rank() int {
	return len(t.Shape)
}

// Size 返回 shape 各维乘积，溢出时返回 math.MaxInt
func (t *Tensor) Size() int {
	if len(t.Shape) == 0 || slices.Contains(t.Shape, 0) {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		if d > 0 && n > math.MaxInt/d {
			return math.MaxInt
		}
		n *= d
	}
	return n
}

// Validate 检查 shape 非负且各维乘积等于数据长度
func (t *Tensor) Validate() error {
	for _, d := range t.Shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in shape %v", t.Shape)
		}
	}
	if len(t.Shape) == 0 || slices.Contains(t.Shape, 0) {
		if len(t.Data) != 0 {
			return fmt.Errorf("shape %v wants 0 values, got %d", t.Shape, len(t.Data))
		}
		return nil
	}

	// 累乘超过数据长度即可判定不匹配，同时避免溢出
	n := 1
	for _, d := range t.Shape {
		if n > len(t.Data)/d {
			return fmt.Errorf("shape %v wants more than %d values", t.Shape, len(t.Data))
		}
		n *= d
	}
	if n != len(t.Data) {
		return fmt.Errorf("shape %v wants %d values, got %d", t.Shape, n, len(t.Data))
	}
	return nil
}

type OutputKind int

const (
	KindUnrecognized OutputKind = iota
	KindSingle
	KindList
)

func (k OutputKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindList:
		return "list"
	default:
		return "unrecognized"
	}
}

// Output 模型原始输出。不同模型封装返回的结构不一致：
// 单个数组，或者(嵌套的)数组列表。
type Output struct {
	Kind   OutputKind
	Tensor *Tensor
	Items  []Output
}

func Single(t *Tensor) Output {
	return Output{Kind: KindSingle, Tensor: t}
}

func List(items ...Output) Output {
	return Output{Kind: KindList, Items: items}
}

func Unrecognized() Output {
	return Output{Kind: KindUnrecognized}
}

// UnmarshalJSON 对象 {"shape","data"} 解析为单个数组，JSON 数组解析为列表，其余为无法识别
func (o *Output) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*o = Unrecognized()
		return nil
	}

	switch data[0] {
	case '{':
		var raw struct {
			Shape []int     `json:"shape"`
			Data  []float32 `json:"data"`
		}
		if err := json.Unmarshal(data, &raw); err != nil || raw.Shape == nil {
			*o = Unrecognized()
			return nil
		}
		*o = Single(NewTensor(raw.Shape, raw.Data))
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return fmt.Errorf("decode output list: %w", err)
		}
		items := make([]Output, len(raws))
		for i, raw := range raws {
			if err := items[i].UnmarshalJSON(raw); err != nil {
				return err
			}
		}
		*o = List(items...)
	default:
		*o = Unrecognized()
	}
	return nil
}

func (o Output) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case KindSingle:
		return json.Marshal(o.Tensor)
	case KindList:
		items := o.Items
		if items == nil {
			items = []Output{}
		}
		return json.Marshal(items)
	default:
		return []byte("null"), nil
	}
}
