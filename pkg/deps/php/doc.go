// Package php extracts Packagist dependencies from composer.json manifests.
//
// Constraints such as "^8.0 || ^9.0" contribute their first bound, and
// branch aliases like "dev-main" normalize to "unknown".
package php
