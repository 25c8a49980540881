package appmanifest

import "encoding/json"

// Kind identifies the JSON shape of a Value.
type Kind int

const (
	// KindNull is the JSON null.
	KindNull Kind = iota
	// KindBool is a JSON boolean.
	KindBool
	// KindNumber is a JSON number kept as its source literal.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is a JSON array.
	KindArray
	// KindObject is a JSON object with ordered members.
	KindObject
)

// String returns the lowercase JSON name of the kind for error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Member is one key-value pair of an object Value.
type Member struct {
	// Key is the member name.
	Key string
	// Value is the member value.
	Value *Value
}

// Value is one node of a manifest document.
// Object members keep the order in which they were read, which the pretty
// printer depends on.
type Value struct {
	kind    Kind
	boolean bool
	number  string
	text    string
	items   []*Value
	members []Member
}

// Null returns the JSON null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a JSON boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolean: v}
}

// Number returns a JSON number value carrying the given literal verbatim.
func Number(literal string) *Value {
	return &Value{kind: KindNumber, number: literal}
}

// String returns a JSON string value.
func String(s string) *Value {
	return &Value{kind: KindString, text: s}
}

// Array returns a JSON array value with the given items.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, items: items}
}

// Object returns a JSON object value with the given members in order.
func Object(members ...Member) *Value {
	return &Value{kind: KindObject, members: members}
}

// Kind returns the JSON shape of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// BoolValue returns the boolean payload and whether the value is a boolean.
func (v *Value) BoolValue() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// NumberLiteral returns the verbatim number literal and whether the value is a number.
func (v *Value) NumberLiteral() (string, bool) {
	return v.number, v.kind == KindNumber
}

// StringValue returns the string payload and whether the value is a string.
func (v *Value) StringValue() (string, bool) {
	return v.text, v.kind == KindString
}

// Items returns the array items, or nil when the value is not an array.
func (v *Value) Items() []*Value {
	if v.kind != KindArray {
		return nil
	}

	return v.items
}

// Members returns the ordered object members, or nil when the value is not an object.
func (v *Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}

	return v.members
}

// Member returns the value stored under key in an object.
func (v *Value) Member(key string) (*Value, bool) {
	for _, member := range v.members {
		if member.Key == key {
			return member.Value, true
		}
	}

	return nil, false
}

// SetMember replaces the value stored under key, keeping its position,
// or appends a new member when the key is not present yet.
func (v *Value) SetMember(key string, value *Value) {
	for i, member := range v.members {
		if member.Key == key {
			v.members[i].Value = value
			return
		}
	}

	v.members = append(v.members, Member{Key: key, Value: value})
}

// Clone returns a deep copy of the value tree.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}

	cloned := *v

	if v.items != nil {
		cloned.items = make([]*Value, len(v.items))
		for i, item := range v.items {
			cloned.items[i] = item.Clone()
		}
	}

	if v.members != nil {
		cloned.members = make([]Member, len(v.members))
		for i, member := range v.members {
			cloned.members[i] = Member{Key: member.Key, Value: member.Value.Clone()}
		}
	}

	return &cloned
}

// Interface converts the value into the generic form produced by
// encoding/json, suitable for schema validation. Member order is lost.
func (v *Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolean
	case KindNumber:
		return json.Number(v.number)
	case KindString:
		return v.text
	case KindArray:
		items := make([]any, len(v.items))
		for i, item := range v.items {
			items[i] = item.Interface()
		}

		return items
	case KindObject:
		members := make(map[string]any, len(v.members))
		for _, member := range v.members {
			members[member.Key] = member.Value.Interface()
		}

		return members
	default:
		return nil
	}
}
