package vetting

// ============================================================================
// SYSTEM PROMPT - Persona for every provider
// ============================================================================

const SystemPrompt = `You are a cybersecurity analyst explaining website safety to non-technical users.

RULES:
- NEVER invent data - only use the signals provided
- Answer with a single JSON object and nothing else`

// ============================================================================
// RISK ASSESSMENT
// ============================================================================

// RiskAssessmentPrompt takes, in order: submitted URL, final URL, WHOIS JSON,
// Safe Browsing flag, threat types, PageRank JSON, SSL, login form, third-party
// script count, privacy policy presence, then the tier bands as
// lowMax, mediumMin, mediumMax, highMin.
const RiskAssessmentPrompt = `Based on the data below, produce a final risk assessment for this website.

URL submitted: %s
Final URL after redirects: %s

=== WHOIS Data ===
%s

=== Google Safe Browsing ===
Flagged: %t
Threat types: %s

=== OpenPageRank ===
%s

=== Page Signals ===
SSL/TLS: %t
Has login form: %t
Third-party scripts count: %d
Has privacy policy: %t

Instructions:
1. Provide a RISK score from 0 to 100 where 0 is very safe and 100 is extremely dangerous.
2. Provide a tier: "LOW" (score 0-%d), "MEDIUM" (score %d-%d), or "HIGH" (score %d-100).
3. Provide exactly 2 sentences explaining your reasoning in plain English for a non-technical user.

Respond ONLY in this exact JSON format with no other text:
{"score": <number>, "tier": "<LOW|MEDIUM|HIGH>", "reasoning": "<2 sentences>"}`
