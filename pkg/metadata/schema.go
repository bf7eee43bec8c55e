package metadata

// Schema maps recognized attribute names to their value converters. Names
// not present in the active schema are never stored.
type Schema map[string]Converter

// FamilySchema bundles everything the scanner and extractor need to know
// about one file family's attributes. The package-level instances below are
// built once and never mutated; lookups are by value only.
type FamilySchema struct {
	Attrs     Schema
	MultiTool map[string]MultiTool
	Renames   map[string]string
}

// MultiToolName derives the attribute name the per-tool list is stored
// under.
func MultiToolName(name string) string {
	return name + " per tool"
}

// asList marks schema entries that hold a per-tool list. Lists are produced
// by the multi-tool reducer, never converted from a raw string.
func asList(raw string) (any, error) {
	return raw, nil
}

var toolpathMultiTool = map[string]MultiTool{
	"filament used [cm3]": {Separator: ", ", Convert: AsFloat, Reduce: SumFloats},
	"filament used [mm]":  {Separator: ", ", Convert: AsFloat, Reduce: SumFloats},
	"filament used [g]":   {Separator: ", ", Convert: AsFloat, Reduce: SumFloats},
	"filament cost":       {Separator: ", ", Convert: AsFloat, Reduce: SumFloats},
	"filament_type":       {Separator: ";", Convert: AsString, Reduce: SameOrNothing},
	"extruder_colour":     {Separator: ";", Convert: AsString, Reduce: SameOrNothing},
	"temperature":         {Separator: ",", Convert: AsInt, Reduce: SameOrNothing},
	"bed_temperature":     {Separator: ",", Convert: AsInt, Reduce: SameOrNothing},
	"nozzle_diameter":     {Separator: ",", Convert: AsFloat, Reduce: SameOrNothing},
}

// statusFlagAttrs maps the six optional sub-fields of the M73 status line to
// the presence-flag attribute each one sets. Order follows the field order
// on the line.
var statusFlagAttrs = []struct {
	Field string
	Attr  string
}{
	{"Q", "quiet_percent_present"},
	{"S", "quiet_left_present"},
	{"C", "quiet_change_in_present"},
	{"P", "normal_percent_present"},
	{"R", "normal_left_present"},
	{"D", "normal_change_in_present"},
}

// ToolpathSchema describes the attributes recognized in toolpath comment
// metadata. Keys are primarily defined by PrusaSlicer.
var ToolpathSchema = buildToolpathSchema()

func buildToolpathSchema() *FamilySchema {
	attrs := Schema{
		"estimated printing time (normal mode)": AsString,
		"printer_model":      AsString,
		"layer_height":       AsFloat,
		"fill_density":       AsString,
		"brim_width":         AsInt,
		"support_material":   AsInt,
		"ironing":            AsInt,
		"layer_info_present": AsBool,
	}
	for _, sf := range statusFlagAttrs {
		attrs[sf.Attr] = AsBool
	}
	for name, mt := range toolpathMultiTool {
		attrs[name] = mt.Convert
		attrs[MultiToolName(name)] = asList
	}
	return &FamilySchema{Attrs: attrs, MultiTool: toolpathMultiTool}
}

// ArchiveSchema describes the attributes recognized in the archive config
// entry. Raw config keys are first mapped through Renames to their
// canonical names; unmapped keys pass through unchanged and are then
// filtered by Attrs as usual.
var ArchiveSchema = &FamilySchema{
	Attrs: Schema{
		"printer_model":             AsString,
		"print_time":                AsInt,
		"faded_layers":              AsInt,
		"exposure_time":             AsFloat,
		"initial_exposure_time":     AsFloat,
		"max_initial_exposure_time": AsFloat,
		"max_exposure_time":         AsFloat,
		"min_initial_exposure_time": AsFloat,
		"min_exposure_time":         AsFloat,
		"layer_height":              AsFloat,
		"material_name":             AsString,
		"file_creation_timestamp":   AsString,
	},
	Renames: map[string]string{
		"printerModel":          "printer_model",
		"printTime":             "print_time",
		"numFade":               "faded_layers",
		"expTime":               "exposure_time",
		"expTimeFirst":          "initial_exposure_time",
		"layerHeight":           "layer_height",
		"materialName":          "material_name",
		"fileCreationTimestamp": "file_creation_timestamp",
	},
}
