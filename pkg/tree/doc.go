// Package tree defines the runtime tree produced by template construction.
// Nodes are elements, literal text, or reactive children; attribute values are
// literal text/int/float/bool or reactive values. Reactive variants hold a
// shared reference to a zero-argument evaluator that consumers invoke whenever
// they want a fresh value, so copying or cloning a tree never duplicates the
// closures themselves. Equality is structural for static content and always
// false once a reactive value is involved; use SameEvaluator for identity.
package tree
