package netlist

import "sort"

// DataKey addresses an entry of a DataContainer.
type DataKey struct {
	Category string
	Key      string
}

// DataValue is a typed string value. Type is free-form ("string", "bit_vector", ...).
type DataValue struct {
	Type  string
	Value string
}

// DataContainer is an open key/value store attached to gates, nets, modules
// and netlists. The zero value is ready to use.
type DataContainer struct {
	data map[DataKey]DataValue
}

// SetData stores a value, replacing any previous one.
func (d *DataContainer) SetData(category, key, typ, value string) {
	if d.data == nil {
		d.data = make(map[DataKey]DataValue)
	}
	d.data[DataKey{category, key}] = DataValue{Type: typ, Value: value}
}

// Data returns the value stored under (category, key).
func (d *DataContainer) Data(category, key string) (DataValue, bool) {
	v, ok := d.data[DataKey{category, key}]
	return v, ok
}

// DeleteData removes an entry.
func (d *DataContainer) DeleteData(category, key string) {
	delete(d.data, DataKey{category, key})
}

// HasData reports whether (category, key) is set.
func (d *DataContainer) HasData(category, key string) bool {
	_, ok := d.data[DataKey{category, key}]
	return ok
}

// DataMap returns a copy of all entries.
func (d *DataContainer) DataMap() map[DataKey]DataValue {
	out := make(map[DataKey]DataValue, len(d.data))
	for k, v := range d.data {
		out[k] = v
	}
	return out
}

// DataKeys returns the keys in (category, key) order.
func (d *DataContainer) DataKeys() []DataKey {
	keys := make([]DataKey, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].Key < keys[j].Key
	})
	return keys
}

// CopyDataFrom copies every entry of src, overwriting on key collision.
func (d *DataContainer) CopyDataFrom(src *DataContainer) {
	for k, v := range src.data {
		d.SetData(k.Category, k.Key, v.Type, v.Value)
	}
}

func (d *DataContainer) cloneData() DataContainer {
	var c DataContainer
	c.CopyDataFrom(d)
	return c
}
