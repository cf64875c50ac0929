// Package ruby extracts RubyGems dependencies from Gemfiles.
//
// Only literal declarations of the form
//
//	gem 'rails', '~> 7.1'
//
// are recognized; Ruby code that computes gem names is not evaluated. The
// dependency type is the enclosing group ("development,test") or
// "default".
package ruby
