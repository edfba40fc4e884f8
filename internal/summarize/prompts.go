// Package summarize builds the meeting summary prompts and normalizes what
// the model returns.
package summarize

import "strings"

// ContextUnavailable replaces the context document when it cannot be read.
const ContextUnavailable = "OKR context not available"

const detailedPromptHeader = `You are an executive assistant analyzing a team meeting transcript. Generate a comprehensive HTML summary that includes:

<h2>Executive Overview</h2>
<p>[2-3 sentence overview of the meeting's main purpose and outcomes]</p>

<h2>Key Decisions Made</h2>
<ul>
<li>[List all major decisions with context]</li>
</ul>

<h2>Action Items</h2>
<ul>
<li>[List all action items with owners and deadlines]</li>
</ul>

<h2>Discussion Highlights</h2>
<ul>
<li>[Key discussion points and insights]</li>
</ul>

IMPORTANT: Reduce duplications, Provide ONLY the HTML content without any markdown formatting, code blocks, or ` + "```html" + ` markers. The output should be clean HTML that can be directly embedded in an email.

`

const concisePromptHeader = `Generate a concise summary of this meeting transcript, with highlight, low lights, main outcomes and decisions sections.

Format the response EXACTLY like this:

**Highlights:**
* First highlight point
* Second highlight point

**Low Lights:**
* First challenge or issue
* Second challenge or issue

**Main Outcomes:**
* First main outcome
* Second main outcome

**Decisions:**
* First decision or action item
* Second decision or action item

IMPORTANT RULES:
1. Use **bold** for section headers (Highlights, Low Lights, Main Outcomes, Decisions)
2. Use * (asterisk followed by space) for bullet points
3. Do NOT use any other markdown formatting
4. Keep each bullet point concise (1-2 sentences max)
5. Focus on the most important points from the meeting

`

// DetailedPrompt asks for the HTML summary mailed to participants.
func DetailedPrompt(transcript, okrContext string) string {
	if strings.TrimSpace(okrContext) == "" {
		okrContext = ContextUnavailable
	}

	var prompt strings.Builder
	prompt.WriteString(detailedPromptHeader)
	prompt.WriteString("Meeting Transcript:\n")
	prompt.WriteString(transcript)
	prompt.WriteString("\n\nOKR Context:\n")
	prompt.WriteString(okrContext)
	return prompt.String()
}

// ConcisePrompt asks for the bulleted summary written to the weekly document.
func ConcisePrompt(transcript string) string {
	return concisePromptHeader + "Meeting Transcript:\n" + transcript
}
