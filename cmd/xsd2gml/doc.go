/*
xsd2gml converts XML Schema documents into a GML 3.2 application
schema.

Usage:

	xsd2gml convert [--config file] [--root name] [--prefix p --namespace uri]
		[--reference src [--report file]] [--rename rule] [-o file] input ...
	xsd2gml merge --prefix p --namespace uri [-o file] input ...
	xsd2gml diff target origin
	xsd2gml patch --reference src [--report file] [-o file] input

Inputs may be files, directories or http(s) URLs. A directory stands
for every .xsd file it contains. Several inputs are merged into the
target namespace before conversion.

The convert command turns every complex type reachable from the --root
types into a GML feature: a <Name>Type extending gml:AbstractFeatureType,
a <Name>PropertyType association and a <Name> element. If --reference
is given, nodes of the reference schema missing from the output are
grafted into it; the list of missing nodes is read from --report, or
computed.

The diff command prints one line per node of target that origin
lacks, such as

	/schema/complexType[@name='ValidityType']

The --rename flag takes rules of the form

	regex -> replacement

which are applied to the output text. The -v flag may be repeated to
increase verbosity.

Settings may be stored in a YAML file passed with --config:

	roots: [Situation]
	prefix: npra
	namespace: http://www.vegvesen.no/datex/1.0
	groupOfLocations: true
*/
package main
