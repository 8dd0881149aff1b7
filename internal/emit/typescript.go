package emit

import (
	"github.com/JakeFAU/awards-crawler/internal/award"
)

const winnerInterface = `export interface AwardWinner {
  year: number;
  company: string;
  agency: string;
  category: string;
  project: string;
  rank: number;
  url?: string;
  description?: string;
  imageUrl?: string;

  // Enhanced fields
  technologies?: string[];
  team_members?: string[];
  social_media?: {
    twitter?: string;
    facebook?: string;
    linkedin?: string;
    instagram?: string;
  };
  judge_comments?: string;
  award_criteria?: string[];
  innovative_features?: string[];
  seo_score?: number;
  accessibility_score?: number;
  performance_metrics?: {
    lcp?: number;
    fid?: number;
    cls?: number;
    lighthouse_score?: number;
  };
  case_study_url?: string;
  client_testimonial?: string;
  technical_details?: string;
  design_highlights?: string;
  content_quality?: string;
  user_experience_notes?: string;
  ai_analysis?: string;
}

// Data scraped from the Australian Web Awards website (https://webawards.com.au/)
export const awardWinners: AwardWinner[] = `

func winnersTS(records []award.Record) ([]byte, error) {
	body, err := marshalJSON(records)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(winnerInterface)+len(body))
	out = append(out, winnerInterface...)
	return append(out, body...), nil
}

func categoriesTS(categories []string) ([]byte, error) {
	body, err := marshalJSON(distinctSorted(categories))
	if err != nil {
		return nil, err
	}
	out := []byte("// Categories from the Australian Web Awards\nexport const awardCategories = ")
	out = append(out, body[:len(body)-1]...)
	return append(out, ";\n"...), nil
}
