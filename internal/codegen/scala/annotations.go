package scala

import "fmt"

const (
	annotationPkg = "scala.scalajs.wit.annotation."
	witPkg        = "scala.scalajs.wit."
	unsignedPkg   = "scala.scalajs.wit.unsigned."

	nativeMarker = "scala.scalajs.wit.native"

	// rootNamespace is the linkage namespace of world-level functions.
	rootNamespace = "$root"
)

func witImport(namespace, name string) string {
	return fmt.Sprintf("@%sWitImport(%q, %q)", annotationPkg, namespace, name)
}

func witExport(namespace, name string) string {
	return fmt.Sprintf("@%sWitExport(%q, %q)", annotationPkg, namespace, name)
}

func witFlags(count int) string {
	return fmt.Sprintf("@%sWitFlags(%d)", annotationPkg, count)
}

func witResourceImport(namespace, name string) string {
	return fmt.Sprintf("@%sWitResourceImport(%q, %q)", annotationPkg, namespace, name)
}

func witResourceMethod(name string) string {
	return fmt.Sprintf("@%sWitResourceMethod(%q)", annotationPkg, name)
}

func witResourceStaticMethod(name string) string {
	return fmt.Sprintf("@%sWitResourceStaticMethod(%q)", annotationPkg, name)
}

func annotation(name string) string {
	return "@" + annotationPkg + name
}
