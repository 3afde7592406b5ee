package model

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeTag is the structural category of a document value.
type TypeTag string

const (
	TypeNull      TypeTag = "null"
	TypeUndefined TypeTag = "undefined"
	TypeArray     TypeTag = "array"
	TypeDate      TypeTag = "date"
	TypeObjectID  TypeTag = "object-id"
	TypeObject    TypeTag = "object"
	TypeString    TypeTag = "string"
	TypeNumber    TypeTag = "number"
	TypeBoolean   TypeTag = "boolean"
)

// TypeOf classifies a value decoded by the BSON driver. Values outside the
// driver's closed set fall back to a kind check so JSON-decoded input
// (map[string]interface{}, []interface{}, float64) classifies the same way.
func TypeOf(v interface{}) TypeTag {
	switch v.(type) {
	case nil, primitive.Null:
		return TypeNull
	case primitive.Undefined:
		return TypeUndefined
	case primitive.A, []interface{}:
		return TypeArray
	case primitive.DateTime, primitive.Timestamp, time.Time:
		return TypeDate
	case primitive.ObjectID:
		return TypeObjectID
	case primitive.D, primitive.M, map[string]interface{}, primitive.E,
		primitive.Binary, []byte, primitive.Regex, primitive.CodeWithScope,
		primitive.DBPointer, primitive.MinKey, primitive.MaxKey:
		return TypeObject
	case string, primitive.Symbol, primitive.JavaScript:
		return TypeString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, primitive.Decimal128:
		return TypeNumber
	case bool:
		return TypeBoolean
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Ptr:
		if reflect.ValueOf(v).IsNil() {
			return TypeNull
		}
		return TypeOf(reflect.ValueOf(v).Elem().Interface())
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	default:
		return TypeObject
	}
}

// IsAbsent reports whether v counts as null for nullability and examples.
func IsAbsent(v interface{}) bool {
	t := TypeOf(v)
	return t == TypeNull || t == TypeUndefined
}
