package service

// descriptionPrompt asks the model to turn a free-text study plan into the JSON
// document decoded by planner.ParseDescriptionJSON.
const descriptionPrompt = `You turn a student's description of a study plan into JSON.
Reply with a single JSON object and nothing else, using exactly this shape:
{"subjects":[{"name":"string","sessions":0,"duration_minutes":0,"weak":false}],"review_passes":false,"duration_days":0}
Rules:
- One entry per subject the student mentions.
- sessions is the total number of study sessions for that subject over the whole plan.
- duration_minutes is the length of one session; use 0 when the student does not say.
- weak is true when the student says the subject is hard for them or needs extra work.
- review_passes is true when the student asks for reviews or revision.
- duration_days is the length of the plan in days; use 0 when the student does not say.`

// narrativePrompt asks the model for a short status message about plan progress.
const narrativePrompt = `You are a concise, supportive study coach.
Given a student's plan progress, write two or three sentences in plain text saying where
they stand and what to focus on today.
Do not use markdown, lists or emojis.`
