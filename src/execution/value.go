package execution

import (
	"fmt"

	"github.com/caspernetworks/casper/src/common"
)

// KeyTag discriminates the key space of the global state.
type KeyTag uint8

const (
	//KeyAccount addresses an account by its 32-byte identifier
	KeyAccount KeyTag = iota
	//KeyHash addresses stored contracts by hash
	KeyHash
	//KeyURef is an unforgeable reference handed out by the runtime
	KeyURef
)

// Key addresses a single value in the global state.
type Key struct {
	Tag KeyTag
	ID  []byte
}

// AccountKey ...
func AccountKey(id []byte) Key {
	return Key{Tag: KeyAccount, ID: id}
}

// HashKey ...
func HashKey(id []byte) Key {
	return Key{Tag: KeyHash, ID: id}
}

// URefKey ...
func URefKey(id []byte) Key {
	return Key{Tag: KeyURef, ID: id}
}

// String ...
func (k Key) String() string {
	switch k.Tag {
	case KeyAccount:
		return fmt.Sprintf("Account(%s)", common.EncodeToString(k.ID))
	case KeyHash:
		return fmt.Sprintf("Hash(%s)", common.EncodeToString(k.ID))
	case KeyURef:
		return fmt.Sprintf("URef(%s)", common.EncodeToString(k.ID))
	default:
		return "Unknown"
	}
}

// ValueTag discriminates the variants a global-state value can take.
type ValueTag uint8

const (
	// ValueInt32 ...
	ValueInt32 ValueTag = iota
	// ValueByteArray ...
	ValueByteArray
	// ValueListInt32 ...
	ValueListInt32
	// ValueString ...
	ValueString
	// ValueNamedKey ...
	ValueNamedKey
)

// NamedKey binds a name to a key, as stored under an account.
type NamedKey struct {
	Name string
	Key  Key
}

// Value is a tagged union of the types storable in the global state. Only
// the field selected by Tag is meaningful.
type Value struct {
	Tag      ValueTag
	Int32    int32
	Bytes    []byte
	IntList  []int32
	Str      string
	NamedKey *NamedKey
}

// Int32Value ...
func Int32Value(i int32) Value {
	return Value{Tag: ValueInt32, Int32: i}
}

// ByteArrayValue ...
func ByteArrayValue(b []byte) Value {
	return Value{Tag: ValueByteArray, Bytes: b}
}

// StringValue ...
func StringValue(s string) Value {
	return Value{Tag: ValueString, Str: s}
}
