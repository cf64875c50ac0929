// Package java extracts Maven dependencies from pom.xml manifests.
//
// Dependencies are named by their Maven coordinate "groupId:artifactId",
// the form OSV and deps.dev both use. The dependency type is the Maven
// scope, defaulting to "compile".
//
// # Property Resolution
//
// Versions frequently reference properties:
//
//	<properties>
//	  <spring.version>5.3.0</spring.version>
//	</properties>
//	...
//	<version>${spring.version}</version>
//
// Placeholders are expanded from the POM's own <properties> block and the
// project.version, project.groupId and project.parent.* built-ins, up to a
// fixed nesting depth. Properties inherited from a parent POM are not
// fetched; such versions stay "unknown".
package java
