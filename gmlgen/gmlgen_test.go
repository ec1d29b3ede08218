package gmlgen

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/CognitoIQ/xsd2gml/diff"
	"github.com/CognitoIQ/xsd2gml/internal/testutil"
	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

const npraNS = "http://www.vegvesen.no/datex/1.0"

func archive(t *testing.T) map[string][]byte {
	t.Helper()
	a, err := txtar.ParseFile("testdata/datex.txtar")
	require.NoError(t, err)
	files := make(map[string][]byte)
	for _, f := range a.Files {
		files[f.Name] = f.Data
	}
	return files
}

func parseDoc(t *testing.T, data []byte) *xmltree.Element {
	t.Helper()
	root, err := xmltree.Parse(data)
	require.NoError(t, err)
	return root
}

func sources(t *testing.T, files map[string][]byte) []*xmltree.Element {
	return []*xmltree.Element{
		parseDoc(t, files["situation.xsd"]),
		parseDoc(t, files["location.xsd"]),
	}
}

func testConfig(t *testing.T, opts ...Option) *Config {
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(LogOutput(log.New(testLogger{t}, "", 0)), LogLevel(5))
	cfg.Option(RootTypes("Situation"), TargetNamespace("npra", npraNS))
	cfg.Option(opts...)
	return &cfg
}

type testLogger struct{ t *testing.T }

func (l testLogger) Write(p []byte) (int, error) {
	l.t.Logf("%s", bytes.TrimSpace(p))
	return len(p), nil
}

func named(root *xmltree.Element, local, name string) *xmltree.Element {
	found := root.ChildrenFunc(func(el *xmltree.Element) bool {
		return el.Name.Local == local && el.Attr("", "name") == name
	})
	if len(found) != 1 {
		return nil
	}
	return found[0]
}

func properties(ct *xmltree.Element) map[string]string {
	result := make(map[string]string)
	for _, seq := range ct.Search(xsd.SchemaNS, "sequence") {
		for _, el := range seq.Children {
			result[el.Attr("", "name")] = el.Attr("", "type")
		}
	}
	return result
}

func TestConvert(t *testing.T) {
	files := archive(t)
	cfg := testConfig(t)
	out, err := cfg.Convert(sources(t, files)...)
	require.NoError(t, err)

	require.Equal(t, npraNS, out.Attr("", "targetNamespace"))
	imports := out.ChildrenFunc(func(el *xmltree.Element) bool { return el.Name.Local == "import" })
	require.Len(t, imports, 1)
	require.Equal(t, xsd.GMLNS, imports[0].Attr("", "namespace"))
	require.Equal(t, xsd.GMLLocation, imports[0].Attr("", "schemaLocation"))

	for _, name := range []string{
		"Situation", "HeaderInformation", "SituationRecord", "Accident",
		"VehicleCount", "GroupOfLocations", "Area", "MultilingualString",
	} {
		el := named(out, "element", name)
		require.NotNil(t, el, name)
		require.Equal(t, "npra:"+name+"Type", el.Attr("", "type"))
		require.Equal(t, "gml:AbstractFeature", el.Attr("", "substitutionGroup"))
		require.NotNil(t, named(out, "complexType", name+"Type"), name)
		require.NotNil(t, named(out, "complexType", name+"PropertyType"), name)
	}
	for _, name := range []string{"Severity", "Confidentiality", "DateTime", "AccidentTypeEnum"} {
		require.NotNil(t, named(out, "simpleType", name), name)
	}
	for _, name := range []string{"GMLPolygon", "MultilingualStringValue", "MultilingualStringValueType"} {
		require.Nil(t, named(out, "element", name), name)
		require.Nil(t, named(out, "complexType", name+"Type"), name)
		require.Nil(t, named(out, "simpleType", name), name)
	}
	require.Len(t, out.Children, 30)

	require.Equal(t, map[string]string{
		"overallSeverity":   "npra:Severity",
		"headerInformation": "npra:HeaderInformationType",
		"situationRecord":   "npra:SituationRecordPropertyType",
	}, properties(named(out, "complexType", "SituationType")))

	require.Equal(t, map[string]string{
		"situationRecordCreationTime": "npra:DateTime",
		"groupOfLocations":            "npra:GroupOfLocationsType",
		"accidentType":                "npra:AccidentTypeEnum",
		"vehicleCount":                "npra:VehicleCount",
	}, properties(named(out, "complexType", "SituationRecordType")))

	area := properties(named(out, "complexType", "AreaType"))
	require.Equal(t, "gml:GeometryPropertyType", area["polygon"])
	require.Equal(t, "npra:MultilingualStringType", area["areaName"])
	require.Equal(t, "xs:string", area["locationDescriptor"])

	// simple content is carried by a value property
	require.NotNil(t, named(out, "complexType", "VehicleCount"))
	require.Equal(t, "npra:VehicleCount", properties(named(out, "complexType", "VehicleCountType"))["value"])

	seen := make(map[string]bool)
	for i := range out.Children {
		kind, name, ok := xsd.DeclarationKey(&out.Children[i])
		if !ok {
			continue
		}
		key := kind.String() + " " + name
		require.False(t, seen[key], "duplicate %s", key)
		seen[key] = true
	}

	// the output is a valid schema in its own right
	s, err := xsd.Parse(parseDoc(t, cfg.Output(out)))
	require.NoError(t, err)
	require.Equal(t, npraNS, s.TargetNS)
}

func TestConvertDeterministic(t *testing.T) {
	files := archive(t)
	var outputs [][]byte
	for i := 0; i < 2; i++ {
		cfg := testConfig(t)
		out, err := cfg.Convert(sources(t, files)...)
		require.NoError(t, err)
		outputs = append(outputs, cfg.Output(out))
	}
	require.Equal(t, string(outputs[0]), string(outputs[1]))
}

func TestConvertWithoutBuiltins(t *testing.T) {
	files := archive(t)
	cfg := testConfig(t, BuiltinMultilingual(false), SubstituteTypes(nil))
	out, err := cfg.Convert(sources(t, files)...)
	require.NoError(t, err)
	require.NotNil(t, named(out, "complexType", "GMLPolygonType"))
	require.NotNil(t, named(out, "complexType", "MultilingualStringType"))
	require.NotNil(t, named(out, "complexType", "MultilingualStringValue"))
	require.NotNil(t, named(out, "simpleType", "MultilingualStringValueType"))
}

func TestConvertErrors(t *testing.T) {
	files := archive(t)

	cfg := testConfig(t, RootTypes())
	_, err := cfg.Convert(sources(t, files)...)
	require.ErrorIs(t, err, errNoRoots)

	cfg = testConfig(t, RootTypes("Nothing"))
	_, err = cfg.Convert(sources(t, files)...)
	require.ErrorIs(t, err, xsd.ErrTypeNotFound)

	cfg = testConfig(t)
	_, err = cfg.Convert()
	require.ErrorIs(t, err, errNoInput)
}

func TestTargetFromInput(t *testing.T) {
	files := archive(t)
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(RootTypes("HeaderInformation"))
	out, err := cfg.Convert(sources(t, files)...)
	require.NoError(t, err)
	require.Equal(t, "http://datex2.eu/schema/2/2_0", out.Attr("", "targetNamespace"))
	require.NotNil(t, named(out, "complexType", "HeaderInformationType"))
	require.Equal(t, "D2LogicalModel:Confidentiality",
		properties(named(out, "complexType", "HeaderInformationType"))["confidentiality"])
	require.Equal(t, xsd.Namespace{}, cfg.target)

	other := parseDoc(t, []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
	  xmlns:o="urn:other" targetNamespace="urn:other">
	  <xs:complexType name="HeaderInformation" />
	</xs:schema>`))
	out, err = cfg.Convert(other)
	require.NoError(t, err)
	require.Equal(t, "urn:other", out.Attr("", "targetNamespace"))
	require.NotNil(t, named(out, "element", "HeaderInformation"))
	require.Equal(t, "o:HeaderInformationType", named(out, "element", "HeaderInformation").Attr("", "type"))

	cfg.Option(TargetNamespace("hdr", ""))
	out, err = cfg.Convert(other)
	require.NoError(t, err)
	require.Equal(t, "urn:other", out.Attr("", "targetNamespace"))
	require.Equal(t, "hdr:HeaderInformationType", named(out, "element", "HeaderInformation").Attr("", "type"))
}

func TestPatch(t *testing.T) {
	files := archive(t)
	cfg := testConfig(t, TemplatePrefix("tpl"), Fixups(diff.GroupOfLocations("npra")))
	out, err := cfg.Convert(sources(t, files)...)
	require.NoError(t, err)
	reference := parseDoc(t, files["reference.xsd"])

	report := cfg.Diff(reference, out)
	require.Equal(t, []string{
		"/schema/complexType[@name='SituationRecordType']/complexContent/extension[@base='gml:AbstractFeatureType']/sequence/element[@name='validity']",
		"/schema/complexType[@name='ValidityType']",
	}, report)

	patched, err := cfg.Patch(nil, out, reference)
	require.NoError(t, err)
	require.Empty(t, cfg.Diff(reference, patched))
	require.Equal(t, "npra:ValidityType", properties(named(patched, "complexType", "SituationRecordType"))["validity"])
	require.NotNil(t, named(patched, "complexType", "ValidityType"))
	require.NotContains(t, string(cfg.Output(patched)), "tpl:")
}

func TestPatchGroupOfLocations(t *testing.T) {
	files := archive(t)
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(RootTypes("Situation"), TemplatePrefix("tpl"), GroupOfLocations(true))
	out, err := cfg.Convert(sources(t, files)...)
	require.NoError(t, err)
	record := named(out, "complexType", "SituationRecordType")
	require.NotNil(t, record)
	for _, el := range record.Search(xsd.SchemaNS, "element") {
		if el.Attr("", "name") == "groupOfLocations" {
			el.SetAttr("", "type", "D2LogicalModel:GroupOfLocations")
		}
	}

	patched, err := cfg.Patch(nil, out, parseDoc(t, files["reference.xsd"]))
	require.NoError(t, err)
	props := properties(named(patched, "complexType", "SituationRecordType"))
	require.Equal(t, "D2LogicalModel:GroupOfLocationsType", props["groupOfLocations"])
	require.Equal(t, "D2LogicalModel:ValidityType", props["validity"])
	require.Empty(t, cfg.fixups)
}

func TestRename(t *testing.T) {
	files := archive(t)
	cfg := testConfig(t, Rename(`DATEX II`, "DATEX"), Rename(`\(`, "["))
	out, err := cfg.Convert(sources(t, files)...)
	require.NoError(t, err)
	text := string(cfg.Output(out))
	require.Contains(t, text, "a DATEX traffic/travel situation")
	require.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))

	undo := cfg.Option(Rename("DATEX", "D2"))
	cfg.Option(undo)
	require.Len(t, cfg.rename, 2)
}

func TestSerialize(t *testing.T) {
	root := parseDoc(t, []byte(`<a><b>text</b></a>`))
	require.Equal(t, "<a><b>text</b></a>\n", string(Serialize(root, true, "")))
	require.Equal(t, "<a>\n  <b>text</b>\n</a>\n", string(Serialize(root, true, "  ")))
	require.True(t, bytes.HasPrefix(Serialize(root, false, ""), []byte("<?xml")))
}

func TestOptionRevert(t *testing.T) {
	var cfg Config
	cfg.Option(TargetNamespace("a", "urn:a"))
	undo := cfg.Option(TargetNamespace("b", "urn:b"))
	require.Equal(t, xsd.Namespace{Prefix: "b", URI: "urn:b"}, cfg.target)
	cfg.Option(undo)
	require.Equal(t, xsd.Namespace{Prefix: "a", URI: "urn:a"}, cfg.target)

	undo = cfg.Option(SubstituteType("GMLPoint", "gml:PointPropertyType"))
	require.Equal(t, "gml:PointPropertyType", cfg.substitute["GMLPoint"])
	cfg.Option(undo)
	_, ok := cfg.substitute["GMLPoint"]
	require.False(t, ok)
}

func TestFile(t *testing.T) {
	files := archive(t)
	f, err := ParseFile(files["config.yaml"])
	require.NoError(t, err)
	require.Equal(t, []string{"Situation"}, f.Roots)
	require.True(t, f.GroupOfLocations)

	opts, err := f.Options()
	require.NoError(t, err)
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(opts...)
	require.Equal(t, []string{"Situation"}, cfg.roots)
	require.Equal(t, xsd.Namespace{Prefix: "npra", URI: npraNS}, cfg.target)
	require.Equal(t, "tpl", cfg.templatePrefix)
	require.True(t, cfg.groupOfLocations)
	require.Empty(t, cfg.fixups)
	require.Equal(t, "gml:PointPropertyType", cfg.substitute["GMLPoint"])
	require.Equal(t, "gml:GeometryPropertyType", cfg.substitute["GMLPolygon"])
	require.True(t, cfg.multilingual)
	require.Len(t, cfg.rename, 1)

	_, err = ParseFile([]byte("rootz: [A]\n"))
	require.Error(t, err)

	f, err = ParseFile([]byte("prefix: npra\n"))
	require.NoError(t, err)
	_, err = f.Options()
	require.Error(t, err)

	f, err = ParseFile([]byte("groupOfLocations: true\n"))
	require.NoError(t, err)
	opts, err = f.Options()
	require.NoError(t, err)
	require.Len(t, opts, 1)

	f, err = ParseFile([]byte("rename: ['no arrow']\n"))
	require.NoError(t, err)
	_, err = f.Options()
	require.Error(t, err)
}

func TestLoaderURL(t *testing.T) {
	files := archive(t)
	const url = "http://example.com/datex/situation.xsd"
	l := Loader{Client: testutil.FakeClient(url, files["situation.xsd"])}

	doc, err := l.Load(url)
	require.NoError(t, err)
	require.Equal(t, "schema", doc.Name.Local)

	_, err = l.Load("http://example.com/datex/missing.xsd")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func writeFiles(t *testing.T, dir string, files map[string][]byte, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0777))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), files[name], 0666))
	}
}

func TestLoadDir(t *testing.T) {
	files := archive(t)
	dir := t.TempDir()
	writeFiles(t, dir, files, "situation.xsd", "location.xsd", "config.yaml")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// sorted by file name
	require.Equal(t, "unqualified", docs[0].Attr("", "attributeFormDefault"))
	require.Equal(t, "qualified", docs[1].Attr("", "elementFormDefault"))

	_, err = LoadDir(t.TempDir())
	require.Error(t, err)

	var l Loader
	all, err := l.LoadAll(filepath.Join(dir, "situation.xsd"), dir)
	require.NoError(t, err)
	require.Len(t, all, 3)

	_, err = l.LoadAll(filepath.Join(dir, "config.yaml"))
	require.Error(t, err)
	var pathErr *os.PathError
	_, err = l.Load(filepath.Join(dir, "nothing.xsd"))
	require.True(t, errors.As(err, &pathErr))
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var cfg Config
	cfg.Option(DefaultOptions...)
	cmd := cfg.command(new(Loader))
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return stdout.String()
}

func TestCommand(t *testing.T) {
	files := archive(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFiles(t, src, files, "situation.xsd", "location.xsd")
	writeFiles(t, dir, files, "config.yaml", "reference.xsd")
	var (
		config    = filepath.Join(dir, "config.yaml")
		reference = filepath.Join(dir, "reference.xsd")
		plain     = filepath.Join(dir, "plain.xsd")
		patched   = filepath.Join(dir, "patched.xsd")
		report    = filepath.Join(dir, "report.txt")
	)

	run(t, "convert", "--config", config, "-o", plain, src)
	data, err := os.ReadFile(plain)
	require.NoError(t, err)
	require.Contains(t, string(data), "a DATEX traffic/travel situation")
	require.Contains(t, string(data), `name="SituationType"`)

	text := run(t, "diff", reference, plain)
	require.Len(t, diff.ParseReport(text), 2)
	require.NoError(t, os.WriteFile(report, []byte(text), 0666))

	run(t, "patch", "--config", config, "--reference", reference, "--report", report, "-o", patched, plain)
	require.Empty(t, run(t, "diff", reference, patched))

	out := run(t, "convert", "--config", config, "--reference", reference, "--root", "Situation", src)
	require.Contains(t, out, `name="ValidityType"`)

	merged := run(t, "merge", "--prefix", "d2", "--namespace", "urn:d2", src)
	require.Contains(t, merged, `xmlns:d2="urn:d2"`)
	require.Contains(t, merged, `type="d2:GroupOfLocations"`)
}

func TestCommandErrors(t *testing.T) {
	var cfg Config
	cmd := cfg.command(new(Loader))
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"diff", "only-one.xsd"})
	require.Error(t, cmd.Execute())

	require.Error(t, cfg.Run("patch", "input.xsd"))
	require.Error(t, cfg.Run("convert", "--config", "testdata/missing.yaml", "x.xsd"))
}
