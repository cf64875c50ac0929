// Package dart extracts pub.dev dependencies from pubspec.yaml manifests.
//
// Entries may be a plain constraint ("^1.2.0"), empty (any version), or a
// source map. Hosted sources contribute their "version" key; sdk, path and
// git sources are skipped:
//
//	dependencies:
//	  flutter:
//	    sdk: flutter
//	  http: ^1.1.0
//	  intl:
//	    hosted: https://pub.dev
//	    version: ^0.18.1
package dart
