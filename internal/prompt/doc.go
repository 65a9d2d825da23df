// Package prompt builds the system and user prompts sent to the LLM gateway
// for design reverse-engineering. Builders are pure and never fail; absent
// optional inputs drop their section from the output.
package prompt
