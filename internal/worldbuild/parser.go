package worldbuild

import (
	"fmt"

	"github.com/dop251/goja"
)

// ParseModuleExports extracts a Descriptor from a required module's
// exports, accepting either `exports.world` or `exports` itself being
// the world object (spec §4.L "extract world descriptor (supports
// exports.world or world directly)").
func ParseModuleExports(exportsVal goja.Value) (Descriptor, error) {
	obj, ok := exportsVal.(*goja.Object)
	if !ok || obj == nil {
		return Descriptor{}, fmt.Errorf("module exports are not an object")
	}
	worldVal := obj.Get("world")
	if worldVal == nil || goja.IsUndefined(worldVal) || goja.IsNull(worldVal) {
		return parseWorldObject(obj)
	}
	worldObj, ok := worldVal.(*goja.Object)
	if !ok {
		return Descriptor{}, fmt.Errorf("exports.world is not an object")
	}
	return parseWorldObject(worldObj)
}

func parseWorldObject(obj *goja.Object) (Descriptor, error) {
	d := Descriptor{
		Name: stringOr(obj.Get("name"), ""),
		Mode: stringOr(obj.Get("mode"), "play"),
	}

	systemsVal := obj.Get("systems")
	systemsObj, ok := systemsVal.(*goja.Object)
	if !ok {
		return Descriptor{}, fmt.Errorf("world.systems is required and must be an array")
	}
	length := int(systemsObj.Get("length").ToInteger())
	for i := 0; i < length; i++ {
		entryVal := systemsObj.Get(itoa(i))
		entryObj, ok := entryVal.(*goja.Object)
		if !ok {
			continue
		}
		d.Systems = append(d.Systems, SystemEntry{
			ID:       stringOr(entryObj.Get("id"), ""),
			Order:    int(entryObj.Get("order").ToInteger()),
			StableID: stringOr(entryObj.Get("stableId"), ""),
			Config:   entryObj.Get("config").Export(),
		})
	}

	if entitiesVal := obj.Get("entities"); entitiesVal != nil {
		if entitiesObj, ok := entitiesVal.(*goja.Object); ok {
			n := int(entitiesObj.Get("length").ToInteger())
			for i := 0; i < n; i++ {
				entryVal := entitiesObj.Get(itoa(i))
				entryObj, ok := entryVal.(*goja.Object)
				if !ok {
					continue
				}
				extra := map[string]any{}
				if exported, ok := entryObj.Export().(map[string]interface{}); ok {
					for k, v := range exported {
						if k == "name" || k == "prefab" {
							continue
						}
						extra[k] = v
					}
				}
				d.Entities = append(d.Entities, EntityEntry{
					Name:   stringOr(entryObj.Get("name"), ""),
					Prefab: stringOr(entryObj.Get("prefab"), ""),
					Extra:  extra,
				})
			}
		}
	}

	return d, nil
}

func stringOr(v goja.Value, fallback string) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return fallback
	}
	return v.String()
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
