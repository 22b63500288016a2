// Package scoring combines semantic similarity with explicit business rules
// into a single match score.
//
// A score is the weighted sum of four sub-scores, rounded to two decimals:
//
//	similarity        0.40  similarity reported by retrieval, in [0,1]
//	mandatory skills  0.30  SkillScore over the offer's mandatory skills
//	desirable skills  0.15  SkillScore over the offer's desirable skills
//	level             0.15  1.0 on an exact level match, 0.5 otherwise
//
// Skill names match case-insensitively when either name contains the
// other, so "React" covers "React.js" and the reverse. An empty requirement
// list scores 1.0.
//
// Rank sorts with a stable sort, so equal scores keep retrieval order, and
// truncates only after sorting the whole set.
package scoring
